// Package profanity screens user submitted text against a blocklist of
// Turkish and English terms.
//
// Text is lowercased with Turkish casing rules and split into words. Terms
// shorter than four runes only match a whole word, longer terms match at the
// start of a word so suffixed forms are caught. Words spelled out with
// separators ("a.m.k", "o r o s p u") are joined back together before
// matching, and common digit substitutions are undone. Stretched letters
// ("siiiktir") are squeezed, but the unsqueezed spelling is also checked so
// terms like "xxx" still match.
package profanity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category groups blocked terms for user-facing messages.
type Category string

const (
	CategorySwear  Category = "küfür"
	CategoryInsult Category = "hakaret"
	CategorySexual Category = "cinsel"
)

// Match describes the first blocked term found in a text.
type Match struct {
	Term     string
	Category Category
}

type term struct {
	text     string
	category Category
	short    bool
}

// shortTermRunes is the length below which a term must match a whole word.
const shortTermRunes = 4

var blocklist = buildBlocklist(map[Category][]string{
	CategorySwear: {
		"amk", "aq", "oç", "oe", "sik", "göt", "piç", "pıç", "puşt",
		"sikerim", "siker", "siktir", "sikmek", "sıkerim", "sıker", "sıktır",
		"götünü", "götün", "götveren", "orospu", "orospuçocuğu", "orospucocugu", "orospucoqu",
		"kaltak", "kahpe", "pezevenk", "gavat", "yarrak", "yarrağ", "yarrag", "yarak", "yarraq",
		"amına", "amını", "ananı", "ananıskm", "avradını", "sıçmak", "sıçar", "sıçam",
		"fuck", "motherfucker", "shit", "cunt",
	},
	CategoryInsult: {
		"adi", "ibne", "ıbne", "şerefsiz", "şerefsız", "namussuz", "haysiyetsiz", "haysıyetsız",
		"gerizekalı", "gerızekalı", "gavur", "idiot", "moron", "retard", "bitch", "asshole", "bastard",
		"faggot", "nigger",
	},
	CategorySexual: {
		"xxx", "porno", "seks", "hentai", "sikiş", "amcık", "taşşak", "taşak", "çük",
		"blowjob", "dickpic", "nude",
	},
})

// allowed lists legitimate word stems that begin with a blocked term.
var allowed = []string{
	"seksen", "seksiyon", "seksüel", "retardas", "ananın",
}

func buildBlocklist(groups map[Category][]string) []term {
	// Fixed order keeps reported terms stable across runs.
	order := []Category{CategorySwear, CategoryInsult, CategorySexual}

	var terms []term
	for _, category := range order {
		for _, text := range groups[category] {
			terms = append(terms, term{
				text:     text,
				category: category,
				short:    utf8.RuneCountInString(text) < shortTermRunes,
			})
		}
	}
	return terms
}

// Check reports the first blocked term in text.
func Check(text string) (Match, bool) {
	for _, w := range candidates(text) {
		if t, ok := w.match(); ok {
			return Match{Term: t.text, Category: t.category}, true
		}
	}
	return Match{}, false
}

// Clean reports whether text contains no blocked term.
func Clean(text string) bool {
	_, found := Check(text)
	return !found
}

// Mask replaces the letters of every blocked word with asterisks.
func Mask(text string) string {
	runes := []rune(text)
	masked := false
	for _, w := range candidates(text) {
		if _, ok := w.match(); !ok {
			continue
		}
		for i := w.start; i < w.end; i++ {
			if isWordRune(runes[i]) {
				runes[i] = '*'
			}
		}
		masked = true
	}
	if !masked {
		return text
	}
	return string(runes)
}

func matchWord(word string) (term, bool) {
	for _, t := range blocklist {
		if t.short {
			if word == t.text {
				return t, true
			}
			continue
		}
		if strings.HasPrefix(word, t.text) && !isAllowed(word) {
			return t, true
		}
	}
	return term{}, false
}

func isAllowed(word string) bool {
	for _, stem := range allowed {
		if strings.HasPrefix(word, stem) {
			return true
		}
	}
	return false
}

// word is a normalized word with its rune span in the original text. raw
// keeps repeated letters that text squeezes out.
type word struct {
	text       string
	raw        string
	start, end int
}

func (w word) match() (term, bool) {
	if t, ok := matchWord(w.text); ok {
		return t, true
	}
	if w.raw != w.text {
		return matchWord(w.raw)
	}
	return term{}, false
}

// candidates returns every word of text plus the words formed by runs of
// single letters separated by punctuation or spaces.
func candidates(text string) []word {
	words := split(text)

	result := make([]word, 0, len(words))
	result = append(result, words...)

	for i := 0; i < len(words); {
		j := i
		var joined strings.Builder
		for j < len(words) && utf8.RuneCountInString(words[j].text) == 1 {
			joined.WriteString(words[j].text)
			j++
		}
		if j-i >= 2 {
			text := joined.String()
			result = append(result, word{text: squeeze([]rune(text)), raw: text, start: words[i].start, end: words[j-1].end})
		}
		if j == i {
			j++
		}
		i = j
	}
	return result
}

func split(text string) []word {
	var (
		words     []word
		current   []rune
		start     int
		hasLetter bool
	)

	flush := func(end int) {
		if len(current) == 0 {
			return
		}
		raw := unleet(current, hasLetter)
		words = append(words, word{text: squeeze(raw), raw: string(raw), start: start, end: end})
		current = current[:0]
		hasLetter = false
	}

	i := 0
	for _, r := range text {
		if isWordRune(r) {
			if len(current) == 0 {
				start = i
			}
			if unicode.IsLetter(r) {
				hasLetter = true
			}
			current = append(current, unicode.TurkishCase.ToLower(r))
		} else {
			flush(i)
		}
		i++
	}
	flush(i)
	return words
}

var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
}

// unleet undoes digit substitutions in words that contain letters.
func unleet(runes []rune, hasLetter bool) []rune {
	mapped := make([]rune, len(runes))
	for i, r := range runes {
		if sub, ok := leet[r]; ok && hasLetter {
			r = sub
		}
		mapped[i] = r
	}
	return mapped
}

// squeeze collapses runs of three or more identical runes down to one.
func squeeze(mapped []rune) string {
	var b strings.Builder
	for i := 0; i < len(mapped); {
		j := i
		for j < len(mapped) && mapped[j] == mapped[i] {
			j++
		}
		n := j - i
		if n >= 3 {
			n = 1
		}
		for k := 0; k < n; k++ {
			b.WriteRune(mapped[i])
		}
		i = j
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
