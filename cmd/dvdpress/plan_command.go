package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvdpress/internal/display"
	"github.com/backmassage/dvdpress/internal/handbrake"
	"github.com/backmassage/dvdpress/internal/lang"
	"github.com/backmassage/dvdpress/internal/mediainfo"
	"github.com/backmassage/dvdpress/internal/pipeline"
	"github.com/backmassage/dvdpress/internal/planner"
)

func newPlanCommand(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Show the track selection and HandBrakeCLI command for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			path := args[0]
			report, err := mediainfo.Inspect(cmd.Context(), cfg.Tools.MediaInfo, path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}

			plan := planner.BuildTrackPlan(report, cfg.Audio, cfg.Subtitles.Rules)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Audio tracks:")
			fmt.Fprintln(out, audioTable(report, plan))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Subtitle tracks:")
			fmt.Fprintln(out, subtitleTable(report, plan))
			fmt.Fprintln(out)

			outPath := pipeline.OutputPath(cfg.Paths.OutputDir, filepath.Base(path))
			cmdline := handbrake.Build(cfg.Tools.HandBrake, path, outPath, cfg.Profile, plan)
			fmt.Fprintln(out, "Command:")
			fmt.Fprintln(out, " ", strings.Join(cmdline, " "))
			return nil
		},
	}
	return cmd
}

// audioTable lists every audio stream and marks the selected ones with their
// preference rank and display name.
func audioTable(report *mediainfo.Report, plan planner.TrackPlan) string {
	rows := make([][]string, 0, len(report.Audio))
	for _, s := range report.Audio {
		track := s.Index + 1
		selected, name := "", ""
		for i, t := range plan.Audio {
			if t == track {
				selected = strconv.Itoa(i + 1)
				name = plan.AudioNames[i]
				break
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(track),
			lang.Normalize(s.Language),
			s.Format,
			selected,
			name,
		})
	}
	return display.RenderTable(
		[]string{"Track", "Lang", "Format", "Pick", "Name"},
		rows,
		[]display.Alignment{display.AlignRight, display.AlignLeft, display.AlignLeft, display.AlignRight, display.AlignLeft},
	)
}

// subtitleTable lists every text stream with its size proportion and the rule
// that claimed it, if any.
func subtitleTable(report *mediainfo.Report, plan planner.TrackPlan) string {
	ruleFor := make(map[int]planner.SubtitlePick, len(plan.Subtitles))
	for _, pick := range plan.Subtitles {
		ruleFor[pick.Track] = pick
	}
	defaultTrack, _ := plan.DefaultSubtitle()

	rows := make([][]string, 0, len(report.Text))
	for _, s := range report.Text {
		track := s.Index + 1
		rule := ""
		if pick, ok := ruleFor[track]; ok {
			rule = pick.Rule
		}
		rows = append(rows, []string{
			strconv.Itoa(track),
			lang.Normalize(s.Language),
			display.FormatBytes(s.SizeBytes),
			display.FormatProportion(s.Proportion),
			rule,
			display.YesNo(track == defaultTrack),
		})
	}
	return display.RenderTable(
		[]string{"Track", "Lang", "Size", "Share", "Rule", "Default"},
		rows,
		[]display.Alignment{display.AlignRight, display.AlignLeft, display.AlignRight, display.AlignRight, display.AlignLeft, display.AlignLeft},
	)
}
