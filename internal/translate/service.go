package translate

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 1024

// Service derives per-language description variants. Stored translations win;
// otherwise a keyword substitution pass runs over the base text, and when
// nothing matches the base text is returned tagged with the requested code so
// the fallback is visible to the reader.
type Service struct {
	baseLang Lang
	cache    *lru.Cache[string, string]
}

func NewService(baseLang Lang) (*Service, error) {
	if !IsSupported(baseLang) {
		return nil, fmt.Errorf("unsupported base language %q", baseLang)
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{baseLang: baseLang, cache: cache}, nil
}

func (s *Service) BaseLang() Lang { return s.baseLang }

// Precompute derives every storable variant of baseText. Languages where no
// dictionary term matches are omitted: renders fall back to the tagged base
// text for those, and nothing stale ends up persisted.
func (s *Service) Precompute(baseText string) map[Lang]string {
	out := make(map[Lang]string)
	for _, l := range Supported() {
		if l == s.baseLang {
			continue
		}
		if derived, ok := substitute(baseText, l); ok {
			out[l] = derived
		}
	}
	return out
}

// Describe resolves the description of one item for one language. cacheKey
// must change whenever the item's text changes (callers use id+updated-at).
func (s *Service) Describe(cacheKey, baseText string, stored map[Lang]string, lang Lang) string {
	if lang == s.baseLang || !IsSupported(lang) {
		return baseText
	}
	if text, ok := stored[lang]; ok && text != "" {
		return text
	}

	key := cacheKey + "|" + string(lang)
	if text, ok := s.cache.Get(key); ok {
		return text
	}

	text, ok := substitute(baseText, lang)
	if !ok {
		text = Tagged(baseText, lang)
	}
	s.cache.Add(key, text)
	return text
}

// Tagged marks base-language text with the language it was requested in.
func Tagged(baseText string, lang Lang) string {
	return baseText + " [" + string(lang) + "]"
}

// substitute rewrites every dictionary term found in text and reports whether
// at least one replacement happened. Terms apply in sorted order so the
// derived text is stable across runs.
func substitute(text string, lang Lang) (string, bool) {
	dict, ok := dictionaries[lang]
	if !ok {
		return text, false
	}
	terms := make([]string, 0, len(dict))
	for term := range dict {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	replaced := false
	for _, term := range terms {
		var changed bool
		text, changed = replaceWordFold(text, term, dict[term])
		replaced = replaced || changed
	}
	return text, replaced
}

// replaceWordFold is a case-insensitive whole-word replace. It works on rune
// slices throughout: lowercasing rune by rune keeps positions aligned with
// the original text, which byte offsets over strings.ToLower would not
// (some characters change byte length when lowercased).
func replaceWordFold(text, term, repl string) (string, bool) {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	termRunes := []rune(strings.ToLower(term))
	if len(termRunes) == 0 {
		return text, false
	}

	var b strings.Builder
	changed := false
	start := 0
	for i := 0; i+len(termRunes) <= len(runes); {
		end := i + len(termRunes)
		if !matchAt(lower, i, termRunes) || !boundary(runes, i-1) || !boundary(runes, end) {
			i++
			continue
		}
		b.WriteString(string(runes[start:i]))
		b.WriteString(matchCase(string(runes[i:end]), repl))
		i = end
		start = end
		changed = true
	}
	if !changed {
		return text, false
	}
	b.WriteString(string(runes[start:]))
	return b.String(), true
}

func matchAt(lower []rune, i int, term []rune) bool {
	for j, r := range term {
		if lower[i+j] != r {
			return false
		}
	}
	return true
}

// matchCase carries a leading capital from the matched word over to the
// replacement.
func matchCase(matched, repl string) string {
	if matched == "" || repl == "" {
		return repl
	}
	first := []rune(matched)[0]
	if unicode.IsUpper(first) {
		r := []rune(repl)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return repl
}

func boundary(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) {
		return true
	}
	return !unicode.IsLetter(runes[i]) && !unicode.IsDigit(runes[i])
}
