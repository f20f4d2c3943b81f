package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/display"
	"github.com/backmassage/dvdpress/internal/handbrake"
	"github.com/backmassage/dvdpress/internal/ledger"
	"github.com/backmassage/dvdpress/internal/logging"
	"github.com/backmassage/dvdpress/internal/mediainfo"
	"github.com/backmassage/dvdpress/internal/planner"
)

// Files below this size are considered truncated rips and not worth encoding.
const minFileSize = 1000

// Runner processes a batch of input files sequentially. The ledger and the
// encoder executor are injected so tests can run the full loop without
// HandBrakeCLI installed.
type Runner struct {
	cfg  *config.Config
	log  *slog.Logger
	led  ledger.Ledger
	exec handbrake.Executor

	// DryRun logs the planned command instead of executing it.
	DryRun bool
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(cfg *config.Config, log *slog.Logger, led ledger.Ledger, exec handbrake.Executor) *Runner {
	return &Runner{cfg: cfg, log: log, led: led, exec: exec}
}

// Run is the top-level batch entry point. It discovers files, processes each
// sequentially, and returns aggregate stats. Per-file failures are logged and
// never abort the batch; ctx cancellation stops between files.
func (r *Runner) Run(ctx context.Context) RunStats {
	var stats RunStats
	log := r.log.With("run_id", uuid.NewString())

	files, err := Discover(r.cfg.Paths.InputDir)
	if err != nil {
		log.Error("file discovery failed", logging.Err(err))
		return stats
	}

	stats.Total = len(files)
	log.Info("starting batch",
		"input", r.cfg.Paths.InputDir,
		"output", r.cfg.Paths.OutputDir,
		"files", stats.Total)

	for i, path := range files {
		stats.Current = i + 1
		if ctx.Err() != nil {
			log.Warn("interrupted")
			break
		}
		r.processFile(ctx, log, path, &stats)
	}

	logSummary(log, &stats, r.DryRun)
	return stats
}

// processFile handles one media file: ledger check → validate → inspect →
// plan → encode → record → export.
func (r *Runner) processFile(ctx context.Context, log *slog.Logger, path string, stats *RunStats) {
	base := filepath.Base(path)
	log = log.With(logging.File(base))

	seen, err := r.led.Contains(ctx, base)
	if err != nil {
		log.Warn("ledger lookup failed, assuming unprocessed", logging.Err(err))
	}
	if seen {
		log.Debug("already processed, skipping")
		stats.Skipped++
		return
	}

	log.Info("processing", "position", stats.Current, "of", stats.Total)

	fi, err := os.Stat(path)
	if err != nil {
		log.Error("file not found", logging.Err(err))
		stats.Failed++
		return
	}
	if fi.Size() < minFileSize {
		log.Error("file too small, possibly truncated", "bytes", fi.Size())
		stats.Failed++
		return
	}

	report, err := mediainfo.Inspect(ctx, r.cfg.Tools.MediaInfo, path)
	if err != nil {
		// Accepted degradation: encode with no explicit track selection
		// rather than dropping the file.
		log.Warn("metadata unavailable, selecting no tracks", logging.Err(err))
		report = mediainfo.Empty(path)
	}

	plan := planner.BuildTrackPlan(report, r.cfg.Audio, r.cfg.Subtitles.Rules)
	logPlan(log, plan)

	outPath := OutputPath(r.cfg.Paths.OutputDir, base)
	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0o755); err != nil {
		log.Error("cannot create output directory", logging.Err(err))
		stats.Failed++
		return
	}

	args := handbrake.Build(r.cfg.Tools.HandBrake, path, outPath, r.cfg.Profile, plan)

	if r.DryRun {
		log.Info("would encode", "output", filepath.Base(outPath), "command", strings.Join(args, " "))
		stats.Encoded++
		return
	}

	log.Info("encoding", "output", filepath.Base(outPath))
	start := time.Now()
	if err := r.exec.Execute(ctx, args); err != nil {
		logEncodeFailure(log, err)
		os.Remove(outPath)
		stats.Failed++
		return
	}
	elapsed := time.Since(start)

	// Record only after a successful encode. A write fault means the file
	// is re-encoded next run, which is safe.
	if err := r.led.Record(ctx, base); err != nil {
		log.Error("ledger write failed, file will be re-encoded next run", logging.Err(err))
	}

	if r.cfg.Paths.ExportDir != "" {
		r.exportCopy(log, outPath)
	}

	var outSize int64
	if outInfo, err := os.Stat(outPath); err == nil {
		outSize = outInfo.Size()
	}
	stats.TotalInputBytes += fi.Size()
	stats.TotalOutputBytes += outSize
	stats.Encoded++

	log.Info("encoded",
		"seconds", int(elapsed.Seconds()),
		"input", display.FormatBytes(fi.Size()),
		"output", display.FormatBytes(outSize))
}

// OutputPath maps an input basename to its output location: same name, .mkv
// extension, flat in outputDir.
func OutputPath(outputDir, base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".mkv")
}

// --- logging helpers ---

func logPlan(log *slog.Logger, plan planner.TrackPlan) {
	if plan.HasAudio() {
		log.Info("audio selection", "tracks", plan.Audio, "names", plan.AudioNames)
	} else {
		log.Warn("no audio track matched the language preference")
	}
	for _, pick := range plan.Subtitles {
		log.Info("subtitle selection", "track", pick.Track, "rule", pick.Rule)
	}
}

func logEncodeFailure(log *slog.Logger, err error) {
	var encErr *handbrake.EncodeError
	switch {
	case errors.Is(err, handbrake.ErrToolMissing):
		log.Error("HandBrakeCLI not found, skipping file", logging.Err(err))
	case errors.As(err, &encErr):
		log.Error("encode failed", logging.Err(err), "stderr", encErr.Stderr)
	default:
		log.Error("encode failed", logging.Err(err))
	}
}

func logSummary(log *slog.Logger, stats *RunStats, dryRun bool) {
	log.Info("batch done",
		"encoded", stats.Encoded,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	if dryRun || stats.Encoded == 0 {
		return
	}
	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Info("space saved", "bytes", display.FormatBytes(saved))
	} else {
		log.Warn("output larger than input", "bytes", display.FormatBytes(-saved))
	}
}
