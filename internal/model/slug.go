package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slug is the URL-path-safe form of a Title or Ctx.
type Slug string

func (s Slug) String() string { return string(s) }

// reservedWords spells out the RFC 3986 reserved characters.
var reservedWords = map[rune]string{
	':':  "colon",
	'/':  "slash",
	'?':  "question",
	'#':  "hash",
	'[':  "left-bracket",
	']':  "right-bracket",
	'@':  "at",
	'!':  "exclamation",
	'$':  "dollar",
	'&':  "and",
	'\'': "single-quote",
	'(':  "left-parenthesis",
	')':  "right-parenthesis",
	'*':  "asterisk",
	'+':  "plus",
	',':  "comma",
	';':  "semicolon",
	'=':  "equal",
}

// Slugify lowercases v, spells out reserved punctuation as hyphen-delimited
// words and joins whitespace-separated tokens with single hyphens.
// Characters outside the reserved set, including non-Latin scripts, are kept.
func Slugify(v string) Slug {
	lower := cases.Lower(language.Und).String(v)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if word, ok := reservedWords[r]; ok {
			b.WriteByte(' ')
			b.WriteString(word)
			b.WriteByte(' ')
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return Slug(strings.Join(strings.Fields(b.String()), "-"))
}
