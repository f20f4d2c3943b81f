package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks enum fields, the audio preference list, and the subtitle
// rule table. It does not require directories; commands that process files
// call [Config.ValidateDirs] in addition.
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case "file", "sqlite":
		// valid
	default:
		return fmt.Errorf("invalid ledger backend %q (use 'file' or 'sqlite')", c.Ledger.Backend)
	}
	if c.Ledger.Path == "" {
		return errors.New("ledger path must not be empty")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json", "":
		// valid
	default:
		return fmt.Errorf("invalid log format %q (use 'console' or 'json')", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Color) {
	case "auto", "always", "never", "":
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always', or 'never')", c.Logging.Color)
	}

	if c.Tools.HandBrake == "" {
		return errors.New("handbrake binary must not be empty")
	}
	if c.Tools.MediaInfo == "" {
		return errors.New("mediainfo binary must not be empty")
	}

	if len(c.Audio.Languages) == 0 {
		return errors.New("audio language preference list must not be empty")
	}

	if c.Watch.RescanInterval <= 0 {
		return errors.New("watch rescan interval must be positive")
	}

	return c.validateRules()
}

// validateRules enforces the rule-table shape: non-empty unique names,
// unique positive priorities, and a language per rule.
func (c *Config) validateRules() error {
	names := make(map[string]bool, len(c.Subtitles.Rules))
	priorities := make(map[int]bool, len(c.Subtitles.Rules))
	for i, r := range c.Subtitles.Rules {
		if r.Name == "" {
			return fmt.Errorf("subtitle rule %d: name must not be empty", i+1)
		}
		if names[r.Name] {
			return fmt.Errorf("subtitle rule %q: duplicate name", r.Name)
		}
		names[r.Name] = true

		if r.Priority <= 0 {
			return fmt.Errorf("subtitle rule %q: priority must be positive", r.Name)
		}
		if priorities[r.Priority] {
			return fmt.Errorf("subtitle rule %q: duplicate priority %d", r.Name, r.Priority)
		}
		priorities[r.Priority] = true

		if r.Language == "" {
			return fmt.Errorf("subtitle rule %q: language must not be empty", r.Name)
		}
		if r.MinProportion < 0 {
			return fmt.Errorf("subtitle rule %q: min_proportion must not be negative", r.Name)
		}
		if r.MaxProportion > 0 && r.MinProportion >= r.MaxProportion {
			return fmt.Errorf("subtitle rule %q: min_proportion must be below max_proportion", r.Name)
		}
	}
	return nil
}

// ValidateDirs requires input and output directories and rejects an output
// directory inside (or equal to) the input directory, which would let the
// pipeline discover its own output files.
func (c *Config) ValidateDirs() error {
	if c.Paths.InputDir == "" || c.Paths.OutputDir == "" {
		return errors.New("input_dir and output_dir must be configured")
	}
	sep := string(filepath.Separator)
	in, out := c.Paths.InputDir, c.Paths.OutputDir
	if out == in || strings.HasPrefix(out+sep, in+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
