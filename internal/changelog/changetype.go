package changelog

import (
	"regexp"
	"strings"
)

// changeTypePattern matches a change type header, e.g. "### Bug Fixes".
var changeTypePattern = regexp.MustCompile(`^### (?P<type>[a-zA-Z0-9\- ]+)\s*$`)

// ChangeTypeHeader is the parse result of a "### " line.
type ChangeTypeHeader struct {
	// Name is the canonical change type when recognized, otherwise the label
	// as written so it can still serve as a key.
	Name     string
	Fixed    string
	Problems []Problem
	Valid    bool
}

// ParseChangeType parses a change type header line against the ChangeTypes
// vocabulary. Differences in case and spacing are corrected silently.
func ParseChangeType(line string) ChangeTypeHeader {
	h := ChangeTypeHeader{Fixed: line}

	m := changeTypePattern.FindStringSubmatch(line)
	if m == nil {
		h.Name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "###"))
		h.Problems = append(h.Problems, newProblem("Malformed change type: %q", line))
		return h
	}

	label := strings.TrimSpace(m[changeTypePattern.SubexpIndex("type")])
	found, name, corrections := Match(label, ChangeTypes)
	if !found {
		h.Name = label
		h.Problems = append(h.Problems, newProblem("%q is not a valid change type", label))
		return h
	}

	for _, c := range corrections {
		if !c.CaseOnly() {
			h.Problems = append(h.Problems, newProblem("%s", c))
		}
	}

	h.Name = name
	h.Fixed = "### " + name
	h.Valid = true
	return h
}
