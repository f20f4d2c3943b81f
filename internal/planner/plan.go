package planner

import (
	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/mediainfo"
)

// TrackPlan holds the complete track selection for one file: which audio
// and text streams to keep, in what order, under what names. It is pure
// data; the handbrake package turns it into arguments.
type TrackPlan struct {
	Audio      []int          // 1-based stream indices in preference order.
	AudioNames []string       // Display names, aligned with Audio.
	Subtitles  []SubtitlePick // Sorted ascending by rule priority.
}

// HasAudio reports whether any audio track was selected.
func (p *TrackPlan) HasAudio() bool { return len(p.Audio) > 0 }

// HasSubtitles reports whether any text track was selected.
func (p *TrackPlan) HasSubtitles() bool { return len(p.Subtitles) > 0 }

// DefaultSubtitle returns the 1-based track index flagged as the container
// default: the first entry of the priority-sorted selection. The ok result
// is false when nothing was selected.
//
// Note this intentionally ignores the per-rule Default annotation, matching
// long-standing behavior; the annotation still rides along on each pick.
func (p *TrackPlan) DefaultSubtitle() (int, bool) {
	if len(p.Subtitles) == 0 {
		return 0, false
	}
	return p.Subtitles[0].Track, true
}

// BuildTrackPlan runs both selectors against a media report. An empty report
// (the degraded result of a failed inspection) produces an empty plan, which
// still assembles into a runnable command.
func BuildTrackPlan(r *mediainfo.Report, audio config.Audio, rules []config.SubtitleRule) TrackPlan {
	plan := TrackPlan{
		Subtitles: SelectSubtitles(r.Text, rules),
	}
	for _, m := range matchAudio(r.Audio, audio.Languages) {
		plan.Audio = append(plan.Audio, m.Track)
		plan.AudioNames = append(plan.AudioNames, audioName(audio, m.Language))
	}
	return plan
}
