// Package ledger provides the durable processed-file set that makes repeated
// batch runs idempotent. Identifiers are source basenames, never full paths:
// two directories holding a same-named file count as one identity, a
// deliberate simplification callers must keep in mind.
//
// The set is append-only. Nothing ever removes an entry.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/backmassage/dvdpress/internal/config"
)

// Sentinel errors. A read failure degrades to an empty set (risking a
// harmless re-encode); a write failure means the finished file will be
// re-encoded on the next run. Neither is fatal to a batch.
var (
	ErrRead  = errors.New("ledger read failed")
	ErrWrite = errors.New("ledger write failed")
)

// Ledger is the durable processed-file set. Implementations are injected
// into the pipeline; nothing holds one as global state.
type Ledger interface {
	// Contains reports whether id was recorded by a previous run.
	Contains(ctx context.Context, id string) (bool, error)
	// Record durably appends id. Callers check Contains first; Record does
	// not deduplicate beyond what the backend guarantees.
	Record(ctx context.Context, id string) error
	Close() error
}

// Lister is implemented by backends that can enumerate the recorded set,
// used by the ledger inspection commands.
type Lister interface {
	All(ctx context.Context) ([]string, error)
}

// Open constructs the configured backend. On a read fault the file backend
// returns a usable empty-set ledger together with an ErrRead-wrapped error,
// so callers can log the degradation and continue.
func Open(cfg config.Ledger) (Ledger, error) {
	switch cfg.Backend {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "file", "":
		return OpenFile(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
