package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/backmassage/dvdpress/internal/logging"
)

// exportCopy copies a finished encode into the export directory. The export
// target is often a network mount that may be absent; a missing directory or
// failed copy is logged as a warning and never fails the file.
func (r *Runner) exportCopy(log *slog.Logger, outPath string) {
	dir := r.cfg.Paths.ExportDir
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Warn("export directory unavailable, skipping copy", "export", dir)
		return
	}

	dst := filepath.Join(dir, filepath.Base(outPath))
	if err := copyFile(outPath, dst); err != nil {
		log.Warn("export copy failed", logging.Err(err))
		return
	}
	log.Info("exported", "target", dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
