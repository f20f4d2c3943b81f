package handbrake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// stderrTailLines bounds how much encoder output an EncodeError carries.
const stderrTailLines = 20

// Executor runs an assembled argument slice. The pipeline depends on this
// interface so tests can substitute a fake encoder.
type Executor interface {
	Execute(ctx context.Context, args []string) error
}

// CLI is the real HandBrakeCLI executor. When Verbose is set, encoder stderr
// (which carries HandBrake's progress display) is tee'd through in real time;
// otherwise it is captured silently for error reporting.
type CLI struct {
	Verbose bool
}

// Execute runs args[0] with the remaining tokens and blocks until the encode
// finishes. A missing binary yields ErrToolMissing; a non-zero exit yields an
// *EncodeError carrying the stderr tail.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if c.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
		cmd.Stdout = os.Stdout
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrToolMissing, args[0])
	}
	return &EncodeError{Err: err, Stderr: stderrTail(stderrBuf.String(), stderrTailLines)}
}
