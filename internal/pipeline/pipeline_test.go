package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/handbrake"
	"github.com/backmassage/dvdpress/internal/ledger"
)

// --- Discover tests ---

func TestDiscover_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.vob")
	touch(t, dir, "show.mkv")
	touch(t, dir, "music.mp3")
	touch(t, dir, "readme.txt")
	touch(t, dir, "feature.mpg")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"feature.mpg", "movie.vob", "show.mkv"}
	got := basenames(files)
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "top.vob")
	sub := filepath.Join(dir, "season")
	os.MkdirAll(sub, 0o755)
	touch(t, sub, "nested.vob")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1 (subdirectories must not be walked)", len(files))
	}
}

func TestDiscover_SkipsDotfiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, ".partial.vob")
	touch(t, dir, "whole.vob")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"whole.vob"}
	if !sliceEqual(basenames(files), want) {
		t.Errorf("got %v, want %v", basenames(files), want)
	}
}

func TestDiscover_SortedAndCaseInsensitiveExt(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.VOB")
	touch(t, dir, "a.Mkv")
	touch(t, dir, "c.mpg")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i] < files[i-1] {
			t.Errorf("not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("want error for missing directory")
	}
}

// --- OutputPath ---

func TestOutputPath(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"movie.vob", "movie.mkv"},
		{"show.mkv", "show.mkv"},
		{"two.dots.mpg", "two.dots.mkv"},
	}
	for _, c := range cases {
		got := OutputPath("/out", c.base)
		if got != filepath.Join("/out", c.want) {
			t.Errorf("OutputPath(%q) = %q, want %q", c.base, got, filepath.Join("/out", c.want))
		}
	}
}

// --- RunStats ---

func TestRunStats_SpaceSaved(t *testing.T) {
	s := RunStats{TotalInputBytes: 1000, TotalOutputBytes: 600}
	if got := s.SpaceSaved(); got != 400 {
		t.Errorf("SpaceSaved: got %d, want 400", got)
	}
	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	if got := s2.SpaceSaved(); got != -50 {
		t.Errorf("SpaceSaved (negative): got %d, want -50", got)
	}
}

// --- Runner tests (fake executor, real file ledger) ---

// fakeExecutor stands in for HandBrakeCLI: it records the argument lists and
// writes a small output file the way a successful encode would.
type fakeExecutor struct {
	calls [][]string
	fail  error
}

func (f *fakeExecutor) Execute(_ context.Context, args []string) error {
	f.calls = append(f.calls, append([]string(nil), args...))
	if f.fail != nil {
		return f.fail
	}
	return os.WriteFile(argValue(args, "--output"), []byte("encoded"), 0o644)
}

func testRunner(t *testing.T, exec handbrake.Executor) (*Runner, *config.Config, ledger.Ledger) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	// A binary that cannot exist forces the metadata-unavailable path, so
	// the loop runs without mediainfo installed.
	cfg.Tools.MediaInfo = filepath.Join(t.TempDir(), "no-mediainfo")
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "processed.txt")

	led, err := ledger.Open(cfg.Ledger)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() { led.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(&cfg, log, led, exec), &cfg, led
}

func TestRun_EncodesAndRecords(t *testing.T) {
	exec := &fakeExecutor{}
	r, cfg, led := testRunner(t, exec)
	writeInput(t, cfg.Paths.InputDir, "alpha.vob")
	writeInput(t, cfg.Paths.InputDir, "beta.mpg")
	touch(t, cfg.Paths.InputDir, "notes.txt")

	stats := r.Run(context.Background())

	if stats.Total != 2 || stats.Encoded != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want Total=2 Encoded=2 Failed=0", stats)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("executor called %d times, want 2", len(exec.calls))
	}
	for _, base := range []string{"alpha.vob", "beta.mpg"} {
		seen, err := led.Contains(context.Background(), base)
		if err != nil || !seen {
			t.Errorf("ledger missing %q (err=%v)", base, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "alpha.mkv")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	exec := &fakeExecutor{}
	r, cfg, _ := testRunner(t, exec)
	writeInput(t, cfg.Paths.InputDir, "alpha.vob")

	first := r.Run(context.Background())
	second := r.Run(context.Background())

	if first.Encoded != 1 {
		t.Fatalf("first run: Encoded = %d, want 1", first.Encoded)
	}
	if second.Encoded != 0 || second.Skipped != 1 {
		t.Errorf("second run: got %+v, want Encoded=0 Skipped=1", second)
	}
	if len(exec.calls) != 1 {
		t.Errorf("executor called %d times total, want 1", len(exec.calls))
	}
}

func TestRun_EncodeFailureSkipsLedger(t *testing.T) {
	exec := &fakeExecutor{fail: &handbrake.EncodeError{Err: errors.New("exit status 1"), Stderr: "boom"}}
	r, cfg, led := testRunner(t, exec)
	writeInput(t, cfg.Paths.InputDir, "alpha.vob")

	stats := r.Run(context.Background())

	if stats.Failed != 1 || stats.Encoded != 0 {
		t.Fatalf("stats = %+v, want Failed=1 Encoded=0", stats)
	}
	seen, _ := led.Contains(context.Background(), "alpha.vob")
	if seen {
		t.Error("failed encode must not be recorded in the ledger")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "alpha.mkv")); err == nil {
		t.Error("partial output should be removed after a failed encode")
	}
}

func TestRun_TooSmallFileFails(t *testing.T) {
	exec := &fakeExecutor{}
	r, cfg, _ := testRunner(t, exec)
	touch(t, cfg.Paths.InputDir, "stub.vob")

	stats := r.Run(context.Background())

	if stats.Failed != 1 {
		t.Errorf("stats = %+v, want Failed=1", stats)
	}
	if len(exec.calls) != 0 {
		t.Error("executor must not run for truncated files")
	}
}

func TestRun_DryRun(t *testing.T) {
	exec := &fakeExecutor{}
	r, cfg, led := testRunner(t, exec)
	r.DryRun = true
	writeInput(t, cfg.Paths.InputDir, "alpha.vob")

	stats := r.Run(context.Background())

	if stats.Encoded != 1 {
		t.Errorf("stats = %+v, want Encoded=1", stats)
	}
	if len(exec.calls) != 0 {
		t.Error("dry run must not invoke the executor")
	}
	seen, _ := led.Contains(context.Background(), "alpha.vob")
	if seen {
		t.Error("dry run must not record in the ledger")
	}
}

func TestRun_ExportCopy(t *testing.T) {
	exec := &fakeExecutor{}
	r, cfg, _ := testRunner(t, exec)
	cfg.Paths.ExportDir = t.TempDir()
	writeInput(t, cfg.Paths.InputDir, "alpha.vob")

	r.Run(context.Background())

	data, err := os.ReadFile(filepath.Join(cfg.Paths.ExportDir, "alpha.mkv"))
	if err != nil {
		t.Fatalf("export copy missing: %v", err)
	}
	if string(data) != "encoded" {
		t.Errorf("export copy content = %q", data)
	}
}

func TestRun_MissingExportDirDoesNotFail(t *testing.T) {
	exec := &fakeExecutor{}
	r, cfg, _ := testRunner(t, exec)
	cfg.Paths.ExportDir = filepath.Join(t.TempDir(), "gone")
	writeInput(t, cfg.Paths.InputDir, "alpha.vob")

	stats := r.Run(context.Background())

	if stats.Encoded != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want Encoded=1 Failed=0", stats)
	}
}

// --- Watch helpers ---

func TestTriggersRun(t *testing.T) {
	cases := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/in/movie.vob", fsnotify.Create, true},
		{"/in/movie.mkv", fsnotify.Rename, true},
		{"/in/movie.vob", fsnotify.Write, false},
		{"/in/.partial.vob", fsnotify.Create, false},
		{"/in/notes.txt", fsnotify.Create, false},
	}
	for _, c := range cases {
		got := triggersRun(fsnotify.Event{Name: c.name, Op: c.op})
		if got != c.want {
			t.Errorf("triggersRun(%q, %v) = %v, want %v", c.name, c.op, got, c.want)
		}
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

// writeInput creates a file large enough to pass the truncation check.
func writeInput(t *testing.T, dir, name string) {
	t.Helper()
	data := bytes.Repeat([]byte("dvd"), 1024)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func argValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
