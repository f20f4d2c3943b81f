// Package mediainfo wraps the mediainfo CLI and parses its JSON report into
// typed audio and text stream descriptors. Inspection is read-only; a failed
// or unparsable run yields ErrUnavailable, which callers degrade to an empty
// report rather than treating as fatal.
package mediainfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnavailable marks inspection failures: missing file, missing tool,
// or output the parser cannot make sense of.
var ErrUnavailable = errors.New("media metadata unavailable")

// Inspect runs a single mediainfo JSON call against path and returns the
// parsed report. All failure modes wrap [ErrUnavailable].
func Inspect(ctx context.Context, binary, path string) (*Report, error) {
	cmd := exec.CommandContext(ctx, binary, "--Output=JSON", path)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: mediainfo %q: %v", ErrUnavailable, path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw mediainfo JSON output into a Report.
// Exported for testing without a real mediainfo binary.
func ParseJSON(data []byte) (*Report, error) {
	var raw miOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse mediainfo JSON: %v", ErrUnavailable, err)
	}
	return buildReport(&raw), nil
}

// --- mediainfo JSON wire types (all values arrive as strings) ---

type miOutput struct {
	Media miMedia `json:"media"`
}

type miMedia struct {
	Ref    string    `json:"@ref"`
	Tracks []miTrack `json:"track"`
}

type miTrack struct {
	Type       string `json:"@type"`
	Format     string `json:"Format"`
	Language   string `json:"Language"`
	Title      string `json:"Title"`
	StreamSize string `json:"StreamSize"`
	Proportion string `json:"StreamSize_Proportion"`
	Default    string `json:"Default"`
}

// --- Conversion from wire types to domain types ---

func buildReport(raw *miOutput) *Report {
	r := &Report{Ref: raw.Media.Ref}

	for i := range raw.Media.Tracks {
		t := &raw.Media.Tracks[i]
		switch t.Type {
		case "Audio":
			r.Audio = append(r.Audio, Stream{
				Index:    len(r.Audio),
				Kind:     KindAudio,
				Language: t.Language,
				Format:   t.Format,
				Title:    t.Title,
				Default:  parseYesNo(t.Default),
			})
		case "Text":
			r.Text = append(r.Text, Stream{
				Index:      len(r.Text),
				Kind:       KindText,
				Language:   t.Language,
				Format:     t.Format,
				Title:      t.Title,
				SizeBytes:  parseInt64(t.StreamSize),
				Proportion: parseFloat(t.Proportion),
				Default:    parseYesNo(t.Default),
			})
		}
	}
	return r
}

// --- Value parsing helpers (mediainfo reports numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseYesNo(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}
