// Package check provides system diagnostics (the check command) and
// pre-pipeline dependency validation (CheckDeps) for HandBrakeCLI,
// mediainfo, the working directories, and the processed-file ledger.
package check

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/ledger"
)

// Sentinel errors returned by CheckDeps when a required tool or resource is
// missing.
var (
	ErrHandBrakeNotFound = errors.New("HandBrakeCLI not found")
	ErrMediaInfoNotFound = errors.New("mediainfo not found")
	ErrOutputNotWritable = errors.New("output directory not writable")
	ErrLedgerUnavailable = errors.New("processed-file ledger unavailable")
)

// Logger is the minimal logging interface needed by RunCheck. *slog.Logger
// satisfies it; tests can pass a recording stub.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// RunCheck runs the interactive check flow: it reports tool availability and
// versions, directory access, and ledger state. Informational only, it does
// not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkTool(log, "HandBrakeCLI", cfg.Tools.HandBrake, "--version")
	checkTool(log, "mediainfo", cfg.Tools.MediaInfo, "--Version")
	checkDirs(cfg, log)
	checkLedger(cfg, log)
}

// checkTool verifies the binary is runnable and logs its version line.
func checkTool(log Logger, name, binary, versionFlag string) {
	if _, err := exec.LookPath(binary); err != nil {
		log.Error(name+" not found", "binary", binary)
		return
	}
	version, err := toolVersion(binary, versionFlag)
	if err != nil {
		log.Warn(name+" found but version query failed", "binary", binary, "error", err.Error())
		return
	}
	log.Info(name+" available", "version", version)
}

// checkDirs reports whether the configured directories exist and whether the
// output and export directories accept writes.
func checkDirs(cfg *config.Config, log Logger) {
	reportDir(log, "input", cfg.Paths.InputDir, false)
	reportDir(log, "output", cfg.Paths.OutputDir, true)
	if cfg.Paths.ExportDir != "" {
		reportDir(log, "export", cfg.Paths.ExportDir, true)
	}
}

func reportDir(log Logger, role, dir string, wantWrite bool) {
	if dir == "" {
		log.Warn(role + " directory not configured")
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Error(role+" directory missing", "path", dir)
		return
	}
	if wantWrite && !dirWritable(dir) {
		log.Error(role+" directory not writable", "path", dir)
		return
	}
	log.Info(role+" directory ok", "path", dir)
}

// checkLedger opens the configured ledger and reports how many files it
// already lists.
func checkLedger(cfg *config.Config, log Logger) {
	led, err := ledger.Open(cfg.Ledger)
	if led == nil {
		log.Error("ledger unavailable", "backend", cfg.Ledger.Backend, "error", err.Error())
		return
	}
	defer led.Close()
	if err != nil {
		log.Warn("ledger opened with read fault", "error", err.Error())
	}
	if lister, ok := led.(ledger.Lister); ok {
		ids, listErr := lister.All(context.Background())
		if listErr == nil {
			log.Info("ledger ok", "backend", cfg.Ledger.Backend, "processed", len(ids))
			return
		}
	}
	log.Info("ledger ok", "backend", cfg.Ledger.Backend)
}

// CheckDeps is the pre-pipeline validation: HandBrakeCLI and mediainfo must
// be runnable, the output directory must accept writes, and the ledger must
// open. Returns a sentinel error on the first failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.Tools.HandBrake); err != nil {
		return ErrHandBrakeNotFound
	}
	if _, err := exec.LookPath(cfg.Tools.MediaInfo); err != nil {
		return ErrMediaInfoNotFound
	}
	if !dirWritable(cfg.Paths.OutputDir) {
		return ErrOutputNotWritable
	}
	led, err := ledger.Open(cfg.Ledger)
	if led == nil {
		return errors.Join(ErrLedgerUnavailable, err)
	}
	led.Close()
	return nil
}

// --- internal helpers ---

// toolVersion runs the binary with the given flag and returns the first
// non-empty output line.
func toolVersion(binary, flag string) (string, error) {
	out, err := exec.Command(binary, flag).CombinedOutput()
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", errors.New("empty version output")
}

// dirWritable probes the directory with a throwaway temp file.
func dirWritable(dir string) bool {
	if dir == "" {
		return false
	}
	probe, err := os.CreateTemp(dir, ".dvdpress-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(filepath.Clean(name))
	return true
}
