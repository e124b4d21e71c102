package changelog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// entryPattern accepts an entry bullet with arbitrary spacing, e.g.
// "- (evm) [#1801](https://github.com/evmos/evmos/pull/1801) Fix gas used."
// Spacing that differs from the canonical form is reported separately.
var entryPattern = regexp.MustCompile(
	`^\s*-\s+(?:\(\s*(?P<scope>[^()]*?)\s*\)\s*)?\[\s*#(?P<pr>\d+)\s*\]\(\s*(?P<link>[^()\s]*)\s*\)\s*(?P<desc>.*?)\s*$`,
)

// linkNumberPattern finds the last number in a PR link.
var linkNumberPattern = regexp.MustCompile(`(\d+)(\D*)$`)

// ParseEntry parses a single entry line and validates its PR link and
// description. The returned entry carries the corrected line in Fixed.
func ParseEntry(line string) *Entry {
	e := &Entry{Raw: line, Fixed: line}

	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		e.addProblem(newProblem("Malformed entry: %q", line))
		return e
	}

	pr, err := strconv.Atoi(m[entryPattern.SubexpIndex("pr")])
	if err != nil {
		e.addProblem(newProblem("Malformed entry: %q", line))
		return e
	}

	e.Valid = true
	e.PRNumber = pr
	e.Scope = m[entryPattern.SubexpIndex("scope")]
	e.PRLink = m[entryPattern.SubexpIndex("link")]
	e.Description = m[entryPattern.SubexpIndex("desc")]

	if formatEntry(e.Scope, e.PRNumber, e.PRLink, e.Description) != line {
		e.addProblem(newProblem("Entry is not formatted correctly: %q", line))
	}

	e.PRLink = e.checkLink(e.PRLink)
	e.Description = e.checkDescription(e.Description, line)
	e.Fixed = formatEntry(e.Scope, e.PRNumber, e.PRLink, e.Description)
	return e
}

// checkLink verifies that the link points at the entry's PR number and
// returns the link rewritten to that number.
func (e *Entry) checkLink(link string) string {
	m := linkNumberPattern.FindStringSubmatchIndex(link)
	if m == nil {
		e.addProblem(newProblem("PR link is not matching PR number %d: %q", e.PRNumber, link))
		return link
	}
	if linked, err := strconv.Atoi(link[m[2]:m[3]]); err == nil && linked == e.PRNumber {
		return link
	}
	e.addProblem(newProblem("PR link is not matching PR number %d: %q", e.PRNumber, link))
	return link[:m[2]] + strconv.Itoa(e.PRNumber) + link[m[3]:]
}

// checkDescription applies the description rules in order and returns the
// corrected description.
func (e *Entry) checkDescription(desc, line string) string {
	if desc == "" {
		e.addProblem(newProblem("PR description is missing: %q", line))
		return desc
	}

	desc, corrections := Correct(desc, Terms)
	for _, c := range corrections {
		e.addProblem(newProblem("%s", c))
	}

	if startsLower(desc) {
		e.addProblem(newProblem("PR description should start with capital letter: %q", desc))
		desc = capitalizeDescription(desc)
	}

	if !strings.HasSuffix(desc, ".") {
		e.addProblem(newProblem("PR description should end with a dot: %q", desc))
		desc += "."
	}

	return desc
}

func (e *Entry) addProblem(p Problem) {
	e.Problems = append(e.Problems, p)
}

func formatEntry(scope string, pr int, link, desc string) string {
	var b strings.Builder
	b.WriteString("- ")
	if scope != "" {
		b.WriteString("(" + scope + ") ")
	}
	fmt.Fprintf(&b, "[#%d](%s)", pr, link)
	if desc != "" {
		b.WriteString(" " + desc)
	}
	return b.String()
}

func startsLower(desc string) bool {
	text := desc[firstWord(desc):]
	if strings.HasPrefix(text, "`") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text)
	return unicode.IsLower(r)
}

func capitalizeDescription(desc string) string {
	prefix := firstWord(desc)
	return desc[:prefix] + capitalize(desc[prefix:])
}
