package planner

import (
	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/lang"
	"github.com/backmassage/dvdpress/internal/mediainfo"
)

// SelectAudio returns the 1-based indices of the audio streams to keep.
// For each preference language in order, the first stream (in container
// order) whose language matches is taken; languages without a match
// contribute nothing. Result order follows the preference list, never
// stream appearance order. Empty input yields an empty result.
func SelectAudio(streams []mediainfo.Stream, preference []string) []int {
	matches := matchAudio(streams, preference)
	indices := make([]int, 0, len(matches))
	for _, m := range matches {
		indices = append(indices, m.Track)
	}
	return indices
}

// audioMatch pairs a selected 1-based track index with the preference
// language that claimed it, so display names can be resolved per language.
type audioMatch struct {
	Track    int
	Language string
}

func matchAudio(streams []mediainfo.Stream, preference []string) []audioMatch {
	var out []audioMatch
	for _, want := range preference {
		for _, s := range streams {
			if lang.Equal(s.Language, want) {
				out = append(out, audioMatch{Track: s.Index + 1, Language: want})
				break
			}
		}
	}
	return out
}

// audioName resolves the emitted track display name for a language: the
// configured override when set, otherwise the language's self-name. Names
// are a fixed mapping, never derived from the stream.
func audioName(cfg config.Audio, language string) string {
	if name, ok := cfg.Names[lang.Normalize(language)]; ok && name != "" {
		return name
	}
	return lang.DisplayName(language)
}
