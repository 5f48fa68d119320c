// Package i18n negotiates the response language and picks the best row out
// of an entity's translation table.
package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Lang is a two-letter language code stored in *_translations.language.
type Lang string

const (
	English Lang = "en"
	Arabic  Lang = "ar"
	French  Lang = "fr"
)

// Default is used whenever nothing better can be negotiated.
const Default = English

// Supported lists the site languages; the first entry is the fallback.
var Supported = []Lang{English, Arabic, French}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Arabic,
	language.French,
})

// Parse normalizes a user supplied code such as "AR" or "fr-CA".
func Parse(s string) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	for _, l := range Supported {
		if Lang(s) == l {
			return l, true
		}
	}
	return "", false
}

// Negotiate picks the response language. An explicit, supported query value
// wins; otherwise the Accept-Language header is matched against the
// supported set.
func Negotiate(query, acceptLanguage string) Lang {
	if l, ok := Parse(query); ok {
		return l
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Direction returns the CSS text direction for the language.
func Direction(l Lang) string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Resolve returns the translation for l, falling back to English and then
// to the alphabetically first language present. The returned Lang is the
// language actually used; ok is false when the map is empty.
func Resolve[T any](translations map[string]T, l Lang) (T, Lang, bool) {
	if t, ok := translations[string(l)]; ok {
		return t, l, true
	}
	if t, ok := translations[string(Default)]; ok {
		return t, Default, true
	}
	var zero T
	if len(translations) == 0 {
		return zero, "", false
	}
	keys := make([]string, 0, len(translations))
	for k := range translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return translations[keys[0]], Lang(keys[0]), true
}
