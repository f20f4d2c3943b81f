package handbrake

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for encoder invocation failures. Both are non-fatal to a
// batch; the pipeline logs them and moves to the next file.
var (
	// ErrToolMissing marks a HandBrakeCLI binary that could not be found.
	ErrToolMissing = errors.New("HandBrakeCLI not found")
	// ErrEncodeFailed marks a non-zero encoder exit.
	ErrEncodeFailed = errors.New("encode failed")
)

// EncodeError wraps a non-zero HandBrakeCLI exit together with the tail of
// its captured stderr for diagnosis. errors.Is(err, ErrEncodeFailed) holds.
type EncodeError struct {
	Err    error
	Stderr string // Last lines of captured stderr (may be empty).
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode failed: %v", e.Err)
}

func (e *EncodeError) Is(target error) bool { return target == ErrEncodeFailed }

func (e *EncodeError) Unwrap() error { return e.Err }

// stderrTail returns the last n lines of captured tool output.
func stderrTail(stderr string, n int) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
