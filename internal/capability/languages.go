package capability

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// SupportedLanguages are the languages the translator handles. Any two
// distinct entries form a supported pair.
var SupportedLanguages = []string{"en", "es", "pt", "ru", "tr", "fr", "ja"}

// NormalizeCode reduces a BCP 47 tag such as "pt-BR" to its base language
// code. It returns "" for tags that cannot be parsed or are undetermined.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		return ""
	}
	return base.String()
}

func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

func IsSupportedPair(source, target string) bool {
	return source != target && IsSupportedLanguage(source) && IsSupportedLanguage(target)
}

// LanguageName returns the English display name of a language code, or the
// code itself when it has none.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
