package planner

import (
	"sort"

	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/lang"
	"github.com/backmassage/dvdpress/internal/mediainfo"
)

// proportionScale converts a stream's size fraction to the per-mille range
// the rule table is written in.
const proportionScale = 1000

// SubtitlePick is one selected text stream.
type SubtitlePick struct {
	Track    int    // 1-based stream index.
	Rule     string // Name of the claiming rule, emitted as the track name.
	Default  bool   // The rule's default annotation; overrides the stream's own flag.
	Priority int
}

// SelectSubtitles classifies text streams against the rule table and returns
// the selection sorted ascending by rule priority.
//
// Streams are visited in container order; for each stream the rules are
// checked in table order, and the first rule that has not yet fired and
// matches claims the stream. A rule fires at most once per file, so the
// output is bounded by the table size no matter how noisily the source is
// authored. No text streams, or none matching, yields an empty selection.
func SelectSubtitles(streams []mediainfo.Stream, rules []config.SubtitleRule) []SubtitlePick {
	fired := make([]bool, len(rules))

	var picks []SubtitlePick
	for _, s := range streams {
		for i, r := range rules {
			if fired[i] || !ruleMatches(r, s) {
				continue
			}
			picks = append(picks, SubtitlePick{
				Track:    s.Index + 1,
				Rule:     r.Name,
				Default:  r.Default,
				Priority: r.Priority,
			})
			fired[i] = true
			break // One rule per stream.
		}
	}

	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Priority < picks[j].Priority
	})
	return picks
}

// ruleMatches evaluates one rule against one stream. The proportion bounds
// compare against the stream's size fraction scaled to per-mille; Max is
// exclusive and disabled when <= 0.
func ruleMatches(r config.SubtitleRule, s mediainfo.Stream) bool {
	if !lang.Equal(s.Language, r.Language) {
		return false
	}
	scaled := s.Proportion * proportionScale
	if r.MaxProportion > 0 && scaled >= r.MaxProportion {
		return false
	}
	if r.MinProportion > 0 && scaled < r.MinProportion {
		return false
	}
	return true
}
