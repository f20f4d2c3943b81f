package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/backmassage/dvdpress/internal/logging"
)

// ErrAlreadyRunning is returned when another watch process holds the lock
// file.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Watch runs an initial batch, then re-runs whenever files appear in the
// input directory or the rescan interval elapses. A flock-based lock file
// keeps encodes sequential across processes; Watch returns ErrAlreadyRunning
// when the lock is held. Returns nil once ctx is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	lockPath := r.cfg.Watch.LockFile
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, lockPath)
	}
	defer lock.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(r.cfg.Paths.InputDir); err != nil {
		return fmt.Errorf("watch %s: %w", r.cfg.Paths.InputDir, err)
	}

	interval := time.Duration(r.cfg.Watch.RescanInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Info("watching", "input", r.cfg.Paths.InputDir, "rescan", interval.String())
	r.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !triggersRun(event) {
				continue
			}
			r.log.Debug("filesystem event", "op", event.Op.String(), logging.File(filepath.Base(event.Name)))
			// A Create fires when the rip starts, long before the file is
			// complete. Wait for writes to settle before scanning.
			waitForQuiet(ctx, event.Name)
			r.Run(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", logging.Err(err))
		case <-ticker.C:
			r.Run(ctx)
		}
	}
}

// triggersRun reports whether a filesystem event may have produced a new
// processable file.
func triggersRun(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return mediaExtensions[strings.ToLower(filepath.Ext(name))]
}

// waitForQuiet polls the file size until it stops growing (or the context is
// cancelled), so a half-written rip is not picked up mid-copy.
func waitForQuiet(ctx context.Context, path string) {
	const settle = 2 * time.Second
	var last int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(settle):
		}
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == last {
			return
		}
		last = info.Size()
	}
}
