// Package handbrake assembles and runs HandBrakeCLI invocations. Build is a
// pure function of profile and track plan; Execute shells out and classifies
// failures so the pipeline can distinguish a missing binary from a failed
// encode.
package handbrake

import (
	"strconv"
	"strings"

	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/planner"
)

// Build constructs the complete HandBrakeCLI argument slice for a file.
// Token 0 is the binary path. The sequence is: input/output, the fixed
// baseline profile, the audio segment (omitted when no track was selected),
// the remaining profile tokens, and the subtitle segment (omitted entirely
// when no text track was selected, without even a "no subtitles" directive).
func Build(binary, inputPath, outputPath string, p config.Profile, plan planner.TrackPlan) []string {
	args := make([]string, 0, 48)

	args = append(args, binary,
		"--input", inputPath,
		"--output", outputPath,
	)

	// --- Baseline profile (fixed PAL-DVD tuning) ---
	args = append(args,
		"--encoder", p.Encoder,
		"--encoder-preset", p.Preset,
		"--encoder-profile", p.EncoderProfile,
		"--quality", formatQuality(p.Quality),
	)
	if p.VFR {
		args = append(args, "--vfr")
	}
	if p.CropMode != "" {
		args = append(args, "--crop-mode", p.CropMode)
	}
	if p.AutoAnamorphic {
		args = append(args, "--auto-anamorphic")
	}
	if p.LapSharp != "" {
		args = append(args, "--lapsharp="+p.LapSharp)
	}
	if p.HQDN3D != "" {
		args = append(args, "--hqdn3d="+p.HQDN3D)
	}
	args = append(args, "--aencoder", p.AudioEncoder)
	if p.AudioCopyMask != "" {
		args = append(args, "--audio-copy-mask", p.AudioCopyMask)
	}
	if p.AudioFallback != "" {
		args = append(args, "--audio-fallback", p.AudioFallback)
	}

	// --- Audio segment ---
	if plan.HasAudio() {
		args = append(args,
			"--audio", joinTracks(plan.Audio),
			"--aname", strings.Join(plan.AudioNames, ","),
		)
	}

	if p.NativeLanguage != "" {
		args = append(args, "--native-language", p.NativeLanguage)
	}
	if p.Markers {
		args = append(args, "--markers")
	}
	if p.Turbo {
		args = append(args, "--turbo")
	}
	args = append(args, "--format", p.Format)

	// --- Subtitle segment ---
	if plan.HasSubtitles() {
		tracks := make([]int, 0, len(plan.Subtitles))
		names := make([]string, 0, len(plan.Subtitles))
		for _, pick := range plan.Subtitles {
			tracks = append(tracks, pick.Track)
			names = append(names, pick.Rule)
		}
		def, _ := plan.DefaultSubtitle()
		args = append(args,
			"--subtitle-burned=none",
			"--subtitle", joinTracks(tracks),
			"--subname", strings.Join(names, ","),
			"--subtitle-default", strconv.Itoa(def),
		)
	}

	return args
}

// formatQuality renders the RF value the way HandBrake expects: no trailing
// zeros, no exponent ("17.5", "17").
func formatQuality(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func joinTracks(tracks []int) string {
	parts := make([]string, len(tracks))
	for i, t := range tracks {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}
