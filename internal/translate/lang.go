package translate

import "strings"

// Lang is a supported content language code. The set is closed: storing or
// requesting anything outside it falls back to the base language.
type Lang string

const (
	LangEN Lang = "en"
	LangES Lang = "es"
	LangPT Lang = "pt"
)

// Supported returns the closed set of language codes, base language first.
func Supported() []Lang {
	return []Lang{LangEN, LangES, LangPT}
}

func IsSupported(l Lang) bool {
	switch l {
	case LangEN, LangES, LangPT:
		return true
	}
	return false
}

// ParseLang normalizes a raw code ("ES", "pt-BR") to a supported Lang.
// Unknown codes map to the fallback.
func ParseLang(raw string, fallback Lang) Lang {
	code := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	l := Lang(code)
	if IsSupported(l) {
		return l
	}
	return fallback
}
