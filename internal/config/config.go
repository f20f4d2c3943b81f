// Package config holds runtime configuration: defaults, TOML file loading,
// and validation. All profile defaults match the reference HandBrake settings
// for PAL DVD sources.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/backmassage/dvdpress/internal/lang"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	ExportDir string `toml:"export_dir"` // Optional post-encode copy target (e.g. a network mount).
}

// Tools contains the external binaries the pipeline shells out to.
type Tools struct {
	HandBrake string `toml:"handbrake"`
	MediaInfo string `toml:"mediainfo"`
}

// Ledger configures the processed-file ledger backend.
type Ledger struct {
	Backend string `toml:"backend"` // "file" (line-oriented text) or "sqlite".
	Path    string `toml:"path"`
}

// Audio configures audio track selection.
type Audio struct {
	// Languages is the ordered preference list; one track is kept per
	// language that has a matching stream.
	Languages []string `toml:"languages"`
	// Names overrides the emitted track display name per language code.
	// Unset languages fall back to the language's self-name.
	Names map[string]string `toml:"names"`
}

// SubtitleRule is one entry of the subtitle selection rule table. Rules are
// data, consumed in order by a single generic matcher; each rule claims at
// most one stream per file.
type SubtitleRule struct {
	Name     string `toml:"name"`     // Unique label, also the emitted track name.
	Priority int    `toml:"priority"` // Lower sorts first in the final selection.
	Language string `toml:"language"`
	// Proportion bounds are per-mille of total stream bytes (the stream's
	// proportion scaled by 1000). Max is exclusive; <= 0 disables the bound.
	MaxProportion float64 `toml:"max_proportion"`
	MinProportion float64 `toml:"min_proportion"`
	// Default annotates tracks selected by this rule as default-recommended.
	Default bool `toml:"default"`
}

// Subtitles configures subtitle track selection.
type Subtitles struct {
	Rules []SubtitleRule `toml:"rules"`
}

// Profile is the fixed baseline HandBrakeCLI argument set. Values are
// configuration constants, never computed per file.
type Profile struct {
	Encoder        string  `toml:"encoder"`
	Preset         string  `toml:"preset"`
	EncoderProfile string  `toml:"encoder_profile"`
	Quality        float64 `toml:"quality"`
	VFR            bool    `toml:"vfr"`
	CropMode       string  `toml:"crop_mode"`
	AutoAnamorphic bool    `toml:"auto_anamorphic"`
	LapSharp       string  `toml:"lapsharp"`
	HQDN3D         string  `toml:"hqdn3d"`
	AudioEncoder   string  `toml:"audio_encoder"`
	AudioCopyMask  string  `toml:"audio_copy_mask"`
	AudioFallback  string  `toml:"audio_fallback"`
	NativeLanguage string  `toml:"native_language"`
	Markers        bool    `toml:"markers"`
	Turbo          bool    `toml:"turbo"`
	Format         string  `toml:"format"`
}

// Watch configures monitor mode.
type Watch struct {
	RescanInterval int    `toml:"rescan_interval"` // Seconds between full rescans.
	LockFile       string `toml:"lock_file"`       // Single-instance lock path.
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`  // debug, info, warn, error.
	Format string `toml:"format"` // console or json.
	File   string `toml:"file"`   // Optional append-to-file sink.
	Color  string `toml:"color"`  // auto, always, never.
}

// Config encapsulates all configuration values for dvdpress.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Ledger    Ledger    `toml:"ledger"`
	Audio     Audio     `toml:"audio"`
	Subtitles Subtitles `toml:"subtitles"`
	Profile   Profile   `toml:"profile"`
	Watch     Watch     `toml:"watch"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/dvdpress/config.toml")
}

// Load reads the TOML file at path on top of [Default], then normalizes and
// validates the result. A missing file is not an error when path is the
// default location; defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file: run on defaults.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize expands ~ in paths, trims directory slashes, and canonicalizes
// language codes in the audio preference list and subtitle rules.
func (c *Config) normalize() error {
	var err error
	for _, p := range []*string{
		&c.Paths.InputDir, &c.Paths.OutputDir, &c.Paths.ExportDir,
		&c.Ledger.Path, &c.Watch.LockFile, &c.Logging.File,
	} {
		if *p == "" {
			continue
		}
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
		*p = NormalizeDirArg(*p)
	}

	seen := make(map[string]bool, len(c.Audio.Languages))
	langs := c.Audio.Languages[:0]
	for _, l := range c.Audio.Languages {
		n := lang.Normalize(l)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		langs = append(langs, n)
	}
	c.Audio.Languages = langs

	names := make(map[string]string, len(c.Audio.Names))
	for k, v := range c.Audio.Names {
		names[lang.Normalize(k)] = v
	}
	c.Audio.Names = names

	for i := range c.Subtitles.Rules {
		c.Subtitles.Rules[i].Language = lang.Normalize(c.Subtitles.Rules[i].Language)
	}
	return nil
}

// ExpandPath resolves a leading ~ against the current user's home directory
// and returns an absolute path.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string { return sampleConfig }

// WriteSample writes the sample configuration to path, creating parent
// directories. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
