package wordlist

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/wordtally/internal/model"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific word filter. Unknown languages keep
// everything.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	case "zh":
		return filterTwoHan
	default:
		return func(string) bool { return true }
	}
}

// Filter keeps the words accepted by keep and reports how many were dropped. Relations
// are filtered too so every remaining relation is valid for the language.
func Filter(words []model.Word, keep FilterFunc) ([]model.Word, int) {
	out := make([]model.Word, 0, len(words))
	dropped := 0
	for _, w := range words {
		if !keep(w.Text) {
			dropped++
			continue
		}
		w.Synonyms = filterList(w.Synonyms, keep)
		w.Similar = filterList(w.Similar, keep)
		out = append(out, w)
	}
	return out, dropped
}

func filterList(values []string, keep FilterFunc) []string {
	var out []string
	for _, v := range values {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

// Two-character Han words match the built-in catalog.
func filterTwoHan(word string) bool {
	if utf8.RuneCountInString(word) != 2 {
		return false
	}
	for _, r := range word {
		if !unicode.Is(unicode.Han, r) {
			return false
		}
	}
	return true
}
