package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Detection is the outcome of language identification over a text sample.
type Detection struct {
	Code       string // ISO 639-1 when one exists, otherwise ISO 639-3
	Confidence float64
	Reliable   bool
}

// Detect identifies the language of text. ok is false when nothing could be
// identified (empty input, digits only, or an unsupported script).
func Detect(text string) (Detection, bool) {
	if strings.TrimSpace(text) == "" {
		return Detection{}, false
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		iso3 := strings.ToLower(info.Lang.Iso6393())
		if code = BaseOf(iso3); code == "" {
			code = iso3
		}
	}
	if code == "" {
		return Detection{}, false
	}
	return Detection{Code: code, Confidence: info.Confidence, Reliable: info.IsReliable()}, true
}

// BaseOf returns the base language of a BCP 47, DeepL, or ISO 639 code
// ("EN-GB" -> "en", "pt-BR" -> "pt", "deu" -> "de"). Three-letter codes
// without a two-letter form are returned as is; unparseable input yields "".
func BaseOf(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, conf := parsed.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// SameBase reports whether two codes or tags refer to the same base language.
func SameBase(a, b string) bool {
	baseA, baseB := BaseOf(a), BaseOf(b)
	if baseA == "" || baseB == "" {
		return false
	}
	if baseA == baseB {
		return true
	}
	// Norwegian Bokmål is reported as nb by detectors and as no by DeepL.
	return norwegian(baseA) && norwegian(baseB)
}

// DisplayName returns the English name of a language code, "Unknown" for
// empty input, or the upper-cased code when it cannot be resolved.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

func norwegian(code string) bool {
	return code == "no" || code == "nb"
}
