package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/dvdpress/internal/config"
)

// backends runs a subtest against both ledger implementations.
func backends(t *testing.T, fn func(t *testing.T, open func(t *testing.T) Ledger)) {
	t.Helper()

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed.txt")
		fn(t, func(t *testing.T) Ledger {
			l, err := OpenFile(path)
			if err != nil {
				t.Fatalf("OpenFile: %v", err)
			}
			return l
		})
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed.db")
		fn(t, func(t *testing.T) Ledger {
			l, err := OpenSQLite(path)
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return l
		})
	})
}

func TestRecordThenContains(t *testing.T) {
	backends(t, func(t *testing.T, open func(t *testing.T) Ledger) {
		ctx := context.Background()
		l := open(t)
		defer l.Close()

		if ok, err := l.Contains(ctx, "movie.vob"); err != nil || ok {
			t.Fatalf("fresh ledger Contains = %v, %v", ok, err)
		}
		if err := l.Record(ctx, "movie.vob"); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if ok, err := l.Contains(ctx, "movie.vob"); err != nil || !ok {
			t.Fatalf("after Record, Contains = %v, %v", ok, err)
		}
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	backends(t, func(t *testing.T, open func(t *testing.T) Ledger) {
		ctx := context.Background()

		l := open(t)
		if err := l.Record(ctx, "movie.vob"); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		// Simulated process restart.
		l = open(t)
		defer l.Close()
		if ok, err := l.Contains(ctx, "movie.vob"); err != nil || !ok {
			t.Fatalf("after reopen, Contains = %v, %v", ok, err)
		}
	})
}

func TestRecordIsIdempotent(t *testing.T) {
	backends(t, func(t *testing.T, open func(t *testing.T) Ledger) {
		ctx := context.Background()
		l := open(t)
		defer l.Close()

		for i := 0; i < 3; i++ {
			if err := l.Record(ctx, "movie.vob"); err != nil {
				t.Fatalf("Record #%d: %v", i+1, err)
			}
		}

		all, err := l.(Lister).All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("want exactly one entry, got %v", all)
		}
	})
}

func TestAll_Sorted(t *testing.T) {
	backends(t, func(t *testing.T, open func(t *testing.T) Ledger) {
		ctx := context.Background()
		l := open(t)
		defer l.Close()

		for _, id := range []string{"zeta.vob", "alpha.vob", "mid.vob"} {
			if err := l.Record(ctx, id); err != nil {
				t.Fatalf("Record: %v", err)
			}
		}

		all, err := l.(Lister).All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		want := []string{"alpha.vob", "mid.vob", "zeta.vob"}
		if len(all) != len(want) {
			t.Fatalf("All = %v", all)
		}
		for i := range want {
			if all[i] != want[i] {
				t.Errorf("All[%d] = %q, want %q", i, all[i], want[i])
			}
		}
	})
}

// --- File backend specifics ---

func TestFileLedger_MissingFileIsEmptySet(t *testing.T) {
	l, err := OpenFile(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != nil {
		t.Fatalf("missing ledger file must not error: %v", err)
	}
	defer l.Close()

	ok, err := l.Contains(context.Background(), "anything")
	if err != nil || ok {
		t.Errorf("Contains on empty set = %v, %v", ok, err)
	}
}

func TestFileLedger_ReadFaultDegradesToEmpty(t *testing.T) {
	// A directory at the ledger path is an I/O fault distinct from
	// "does not exist": OpenFile reports it but still hands back a
	// usable empty-set ledger.
	dir := t.TempDir()
	l, err := OpenFile(dir)
	if !errors.Is(err, ErrRead) {
		t.Fatalf("want ErrRead, got %v", err)
	}
	if l == nil {
		t.Fatal("degraded ledger must still be usable")
	}
	ok, cErr := l.Contains(context.Background(), "anything")
	if cErr != nil || ok {
		t.Errorf("degraded Contains = %v, %v", ok, cErr)
	}
}

func TestFileLedger_AppendOnlyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.txt")
	ctx := context.Background()

	l, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"a.vob", "b.vob"} {
		if err := l.Record(ctx, id); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "a.vob\nb.vob\n" {
		t.Errorf("file contents = %q", got)
	}

	// Tolerates blank lines and surrounding whitespace on reload.
	if err := os.WriteFile(path, []byte("a.vob\n\n  b.vob  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err = OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	for _, id := range []string{"a.vob", "b.vob"} {
		if ok, _ := l.Contains(ctx, id); !ok {
			t.Errorf("reloaded ledger missing %q", id)
		}
	}
}

// --- Open dispatch ---

func TestOpen_Dispatch(t *testing.T) {
	dir := t.TempDir()

	l, err := Open(config.Ledger{Backend: "file", Path: filepath.Join(dir, "p.txt")})
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	if _, ok := l.(*FileLedger); !ok {
		t.Errorf("backend 'file' gave %T", l)
	}
	l.Close()

	l, err = Open(config.Ledger{Backend: "sqlite", Path: filepath.Join(dir, "p.db")})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if _, ok := l.(*SQLiteLedger); !ok {
		t.Errorf("backend 'sqlite' gave %T", l)
	}
	l.Close()

	if _, err := Open(config.Ledger{Backend: "redis", Path: "x"}); err == nil {
		t.Error("unknown backend should fail")
	} else if !strings.Contains(err.Error(), "redis") {
		t.Errorf("error should name the backend: %v", err)
	}
}
