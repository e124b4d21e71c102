package changelog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// releasePattern is the only accepted release header form, e.g.
// "## Unreleased" or "## [v15.0.0-rc1] - 2023-11-09".
var releasePattern = regexp.MustCompile(
	`^## (?:Unreleased|\[(?P<version>v\d+\.\d+\.\d+(?:-rc\d+)?)\] - (?P<date>\d{4}-\d{2}-\d{2}))$`,
)

// Headers that are recognizably a release but not in canonical form.
var (
	looseUnreleasedPattern = regexp.MustCompile(`(?i)^##\s+\[?\s*unreleased\s*\]?\s*$`)
	looseVersionPattern    = regexp.MustCompile(
		`^##\s+\[?\s*[vV]?(?P<version>\d+\.\d+\.\d+(?:-rc\d+)?)\s*\]?\s*-\s*(?P<date>\d{4}-\d{2}-\d{2})\s*$`,
	)
)

// ReleaseHeader is the parse result of a "## " line.
type ReleaseHeader struct {
	Version  string
	Date     string
	Fixed    string
	Problems []Problem
	// Valid is false when no version could be identified.
	Valid bool
}

// ParseRelease parses a release header line.
func ParseRelease(line string) ReleaseHeader {
	h := ReleaseHeader{Fixed: line}

	if m := releasePattern.FindStringSubmatch(line); m != nil {
		h.Valid = true
		h.Version = m[releasePattern.SubexpIndex("version")]
		h.Date = m[releasePattern.SubexpIndex("date")]
		if h.Version == "" {
			h.Version = Unreleased
		}
		h.checkDate(line)
		return h
	}

	switch {
	case looseUnreleasedPattern.MatchString(line):
		h.Valid = true
		h.Version = Unreleased
	case looseVersionPattern.MatchString(line):
		m := looseVersionPattern.FindStringSubmatch(line)
		h.Valid = true
		h.Version = "v" + m[looseVersionPattern.SubexpIndex("version")]
		h.Date = m[looseVersionPattern.SubexpIndex("date")]
	default:
		h.Problems = append(h.Problems, newProblem("Malformed release header: %q", line))
		return h
	}

	h.Fixed = formatReleaseHeader(h.Version, h.Date)
	h.Problems = append(h.Problems, newProblem("Release header should be %q: %q", h.Fixed, line))
	h.checkDate(line)
	return h
}

func (h *ReleaseHeader) checkDate(line string) {
	if h.Date == "" {
		return
	}
	if _, err := time.Parse(time.DateOnly, h.Date); err != nil {
		h.Problems = append(h.Problems, newProblem("Release date %q is not a valid date: %q", h.Date, line))
	}
}

func formatReleaseHeader(version, date string) string {
	if version == Unreleased {
		return "## " + Unreleased
	}
	return fmt.Sprintf("## [%s] - %s", version, date)
}

// NormalizeVersion lower-cases a release identifier and strips the "v"
// prefix so that "v15.0.0", "15.0.0" and "V15.0.0" compare equal.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")
}
