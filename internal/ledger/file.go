package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileLedger is the default backend: a line-oriented text file, one basename
// per line. The full set is loaded once on open and kept in memory; Record
// appends to the file and updates the cache, so a crash mid-run loses at most
// the in-flight entry.
type FileLedger struct {
	mu   sync.Mutex
	path string
	seen map[string]struct{}
	// appendFile stays open across records so each append is one write.
	appendFile *os.File
}

// OpenFile loads the ledger at path. A missing file is an empty set. Any
// other read fault still returns a usable empty-set ledger, paired with an
// ErrRead-wrapped error the caller should log as a warning; processing then
// continues with reprocessing as the accepted degradation.
func OpenFile(path string) (*FileLedger, error) {
	l := &FileLedger{path: path, seen: make(map[string]struct{})}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, nil
		}
		return l, fmt.Errorf("%w: open %s: %v", ErrRead, path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			l.seen[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return l, fmt.Errorf("%w: scan %s: %v", ErrRead, path, err)
	}
	return l, nil
}

// Contains checks the in-memory set, which mirrors the file for the life of
// this handle (Record updates both).
func (l *FileLedger) Contains(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[id]
	return ok, nil
}

// Record appends one line and updates the cache. Already-recorded ids are a
// no-op so the file never accumulates duplicates.
func (l *FileLedger) Record(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[id]; ok {
		return nil
	}

	if l.appendFile == nil {
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return fmt.Errorf("%w: create ledger directory: %v", ErrWrite, err)
		}
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("%w: open %s: %v", ErrWrite, l.path, err)
		}
		l.appendFile = f
	}

	if _, err := l.appendFile.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrWrite, l.path, err)
	}
	l.seen[id] = struct{}{}
	return nil
}

// All returns the recorded identifiers sorted lexicographically.
func (l *FileLedger) All(_ context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.seen))
	for id := range l.seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Close closes the append handle if one was opened.
func (l *FileLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendFile != nil {
		err := l.appendFile.Close()
		l.appendFile = nil
		return err
	}
	return nil
}
