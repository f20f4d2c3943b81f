package mediainfo

// Kind discriminates stream descriptor types.
type Kind string

const (
	KindAudio Kind = "audio"
	KindText  Kind = "text"
)

// Stream is an immutable descriptor for one audio or text stream, snapshotted
// at read time. Index is the 0-based position within the stream's own kind,
// in container order; selectors convert to 1-based only when producing final
// encoder arguments.
type Stream struct {
	Index    int
	Kind     Kind
	Language string // As reported; may be empty. Compare via the lang package.
	Format   string
	Title    string

	// Text streams only.
	SizeBytes  int64
	Proportion float64 // Fraction of total stream bytes in [0, 1].

	Default bool
}

// Report is the parsed result of one mediainfo inspection.
type Report struct {
	Ref   string // Source path as echoed by mediainfo.
	Audio []Stream
	Text  []Stream
}

// Empty returns a Report with zero streams. Callers fall back to it when
// inspection fails, so the encoder still runs with a degraded (empty) track
// selection instead of aborting the file.
func Empty(path string) *Report {
	return &Report{Ref: path}
}
