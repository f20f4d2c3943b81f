package config

const (
	defaultHandBrakeBinary = "HandBrakeCLI"
	defaultMediaInfoBinary = "mediainfo"
	defaultLedgerBackend   = "file"
	defaultLedgerPath      = "~/.local/share/dvdpress/processed.txt"
	defaultLockFile        = "~/.local/share/dvdpress/dvdpress.lock"
	defaultRescanInterval  = 300
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultColorMode       = "auto"
)

// Default returns a Config populated with repository defaults. The profile
// values are the fixed PAL-DVD HandBrake settings; the subtitle rule table
// keeps one rarely-shown German track ("Fremdsprache", foreign dialogue
// only), one full German track, and one full English track.
func Default() Config {
	return Config{
		Tools: Tools{
			HandBrake: defaultHandBrakeBinary,
			MediaInfo: defaultMediaInfoBinary,
		},
		Ledger: Ledger{
			Backend: defaultLedgerBackend,
			Path:    defaultLedgerPath,
		},
		Audio: Audio{
			Languages: []string{"de", "en"},
			Names:     map[string]string{},
		},
		Subtitles: Subtitles{
			Rules: []SubtitleRule{
				{Name: "Fremdsprache", Priority: 1, Language: "de", MaxProportion: 0.1, Default: true},
				{Name: "Deutsch", Priority: 2, Language: "de", MaxProportion: 1},
				{Name: "English", Priority: 3, Language: "en", MaxProportion: 1},
			},
		},
		Profile: Profile{
			Encoder:        "x265",
			Preset:         "medium",
			EncoderProfile: "main10",
			Quality:        17.5,
			VFR:            true,
			CropMode:       "auto",
			AutoAnamorphic: true,
			LapSharp:       "light",
			HQDN3D:         "light",
			AudioEncoder:   "copy",
			AudioCopyMask:  "ac3,aac,eac3,truehd,dts,dtshd,flac",
			AudioFallback:  "av_aac",
			NativeLanguage: "deu",
			Markers:        true,
			Turbo:          true,
			Format:         "av_mkv",
		},
		Watch: Watch{
			RescanInterval: defaultRescanInterval,
			LockFile:       defaultLockFile,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Color:  defaultColorMode,
		},
	}
}
