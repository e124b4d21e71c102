package changelog

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Term is a canonical spelling together with the pattern that recognizes
// its variants.
type Term struct {
	Canonical string
	Pattern   *regexp.Regexp

	whole *regexp.Regexp
}

// Vocabulary is an ordered list of terms. Corrections are reported in
// declaration order.
type Vocabulary []Term

// MustTerm builds a case-insensitive Term. The pattern must not carry its own
// anchors; whole-text matching anchors it internally.
func MustTerm(canonical, pattern string) Term {
	return Term{
		Canonical: canonical,
		Pattern:   regexp.MustCompile(`(?i)` + pattern),
		whole:     regexp.MustCompile(`(?i)^(?:` + pattern + `)$`),
	}
}

// ChangeTypes is the closed set of allowed change type headers.
var ChangeTypes = Vocabulary{
	MustTerm("API Breaking", `api\s*breaking`),
	MustTerm("Bug Fixes", `bug\s*fixes`),
	MustTerm("Improvements", `improvements`),
	MustTerm("State Machine Breaking", `state\s*machine\s*breaking`),
}

// Terms is the dictionary of spellings enforced inside entry descriptions.
var Terms = Vocabulary{
	MustTerm("ABI", `\babi\b`),
	MustTerm("API", `\bapi\b`),
	MustTerm("CLI", `\bcli\b`),
	MustTerm("EIP-712", `\beip[\s-]?712\b`),
	MustTerm("ERC-20", `\berc[\s-]?20\b`),
	MustTerm("EVM", `\bevm\b`),
	MustTerm("IBC", `\bibc\b`),
	MustTerm("JSON", `\bjson\b`),
	MustTerm("outpost", `\boutpost\b`),
}

// Correction records a single spelling fix.
type Correction struct {
	Canonical string
	Found     string
}

func (c Correction) String() string {
	return fmt.Sprintf("%q should be used instead of %q", c.Canonical, c.Found)
}

// CaseOnly reports whether the found spelling differs from the canonical one
// only in letter case and whitespace.
func (c Correction) CaseOnly() bool {
	return strings.EqualFold(stripSpace(c.Canonical), stripSpace(c.Found))
}

// Match checks whether the whole text is a variant of one of the vocabulary
// terms. On a match the canonical spelling is returned along with a
// correction if the text had to change.
func Match(text string, vocab Vocabulary) (bool, string, []Correction) {
	trimmed := strings.TrimSpace(text)
	for _, term := range vocab {
		if !term.whole.MatchString(trimmed) {
			continue
		}
		if trimmed == term.Canonical {
			return true, term.Canonical, nil
		}
		return true, term.Canonical, []Correction{{Canonical: term.Canonical, Found: trimmed}}
	}
	return false, text, nil
}

// Correct rewrites every embedded occurrence of a vocabulary term to its
// canonical spelling. Text inside backtick code spans is left untouched.
func Correct(text string, vocab Vocabulary) (string, []Correction) {
	var corrections []Correction
	for _, term := range vocab {
		var fixed []Correction
		text, fixed = correctTerm(text, term)
		corrections = append(corrections, fixed...)
	}
	return text, corrections
}

func correctTerm(text string, term Term) (string, []Correction) {
	matches := term.Pattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	spans := codeSpans(text)
	first := firstWord(text)

	var b strings.Builder
	var corrections []Correction
	last := 0
	for _, m := range matches {
		found := text[m[0]:m[1]]
		if found == term.Canonical || insideSpan(spans, m[0]) || inPath(text, m[0], m[1]) {
			continue
		}
		if m[0] == first && found == capitalize(term.Canonical) {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(term.Canonical)
		last = m[1]
		corrections = append(corrections, Correction{Canonical: term.Canonical, Found: found})
	}
	if len(corrections) == 0 {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), corrections
}

// codeSpans returns the [start, end) byte ranges of backtick code spans.
// An unterminated backtick opens no span.
func codeSpans(text string) [][2]int {
	var spans [][2]int
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] != '`' {
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		spans = append(spans, [2]int{start, i + 1})
		start = -1
	}
	return spans
}

func insideSpan(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

// inPath reports whether text[start:end] is a segment of a path or a dotted
// name such as x/evm or evm.go. A dot ending a sentence does not count.
func inPath(text string, start, end int) bool {
	if start > 0 && (text[start-1] == '/' || text[start-1] == '.') {
		return true
	}
	if end < len(text) {
		switch text[end] {
		case '/':
			return true
		case '.':
			r, _ := utf8.DecodeRuneInString(text[end+1:])
			return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		}
	}
	return false
}

// markupPrefix is skipped when looking for the first word. A leading code
// span is not skipped: identifiers keep their own casing.
const markupPrefix = `*_"'[(`

// firstWord returns the byte offset of the first word, after leading
// whitespace and markup.
func firstWord(text string) int {
	trimmed := strings.TrimLeft(strings.TrimLeftFunc(text, unicode.IsSpace), markupPrefix)
	return len(text) - len(trimmed)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
