// Package lang normalizes language codes found in media metadata and maps
// them to display names. Containers report languages inconsistently ("de",
// "deu", "ger", "de-DE"); all comparisons in the selectors go through
// [Normalize] so the rule tables can be written with plain two-letter codes.
package lang

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ISO 639-2/B codes that the registry does not canonicalize to their
// two-letter base on parse. Mediainfo emits these for DVD sources.
var iso639Bibliographic = map[string]string{
	"ger": "de",
	"fre": "fr",
	"dut": "nl",
	"gre": "el",
	"cze": "cs",
	"chi": "zh",
	"rum": "ro",
	"slo": "sk",
}

// Normalize reduces a language code to its ISO 639-1 base ("deu" -> "de",
// "de-DE" -> "de"). Unparsable input is returned lowercased so unknown
// codes still compare equal to themselves; empty input stays empty.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if two, ok := iso639Bibliographic[code]; ok {
		return two
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, conf := tag.Base()
	if conf == language.No {
		return code
	}
	return base.String()
}

// Equal reports whether two language codes denote the same language after
// normalization. Two empty or unknown codes never match.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na != "" && na == nb
}

// DisplayName returns the language's self-name ("de" -> "Deutsch",
// "en" -> "English"). Unknown codes are returned unchanged.
func DisplayName(code string) string {
	n := Normalize(code)
	if n == "" {
		return code
	}
	tag, err := language.Parse(n)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}
