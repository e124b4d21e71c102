package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound is returned by Load when the changelog file does not exist.
var ErrNotFound = errors.New("changelog file not found")

// Load reads and validates the changelog at path. A missing file fails
// before any parsing happens and matches both ErrNotFound and fs.ErrNotExist.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()

	c, err := ParseReader(f)
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// ParseReader reads the whole document and validates it.
func ParseReader(r io.Reader) (*Changelog, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}
	return Parse(strings.Split(string(data), "\n")), nil
}

// Parse validates the given lines in a single pass. It never stops early:
// every problem in the document ends up in Changelog.Problems, in the order
// it was found.
func Parse(lines []string) *Changelog {
	c := &Changelog{
		lines:  make([]string, len(lines)),
		fixed:  make([]string, len(lines)),
		crlf:   make([]bool, len(lines)),
		byName: make(map[string]*Release),
	}

	s := &scanner{changelog: c}
	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		c.lines[i] = line
		c.crlf[i] = line != raw
		c.fixed[i] = s.scan(i+1, line)
	}
	return c
}

// scanner carries the release and change type context from one line to the
// next.
type scanner struct {
	changelog *Changelog

	// seenRelease is set once any release header was scanned, even one that
	// could not be identified.
	seenRelease bool
	release     *Release
	category    *Category
	// inCategory is set after a change type header, even one that could not
	// be stored.
	inCategory bool
}

// scan routes one line to its parser and returns the line's fixed form.
func (s *scanner) scan(num int, line string) string {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "## "):
		return s.scanRelease(num, line)
	case strings.HasPrefix(trimmed, "### "):
		return s.scanChangeType(num, line)
	case strings.HasPrefix(trimmed, "- "):
		return s.scanEntry(num, line)
	default:
		return line
	}
}

func (s *scanner) scanRelease(num int, line string) string {
	h := ParseRelease(line)
	s.seenRelease = true
	s.category = nil
	s.inCategory = false

	if !h.Valid {
		s.release = nil
		s.report(num, nil, h.Problems...)
		return h.Fixed
	}

	if existing := s.changelog.Release(h.Version); existing != nil {
		s.release = existing
		s.report(num, &existing.Problems,
			newProblem("Release %q is duplicated in the changelog", h.Version))
	} else {
		s.release = s.changelog.addRelease(h.Version, h.Date, num)
	}
	s.report(num, &s.release.Problems, h.Problems...)
	return h.Fixed
}

func (s *scanner) scanChangeType(num int, line string) string {
	h := ParseChangeType(line)
	s.category = nil
	s.inCategory = true

	switch {
	case !s.seenRelease:
		s.inCategory = false
		s.report(num, nil, newProblem("Change type %q is outside of a release: %q", h.Name, line))
		s.report(num, nil, h.Problems...)
	case s.release == nil:
		// Inside a release whose header could not be identified: the header
		// is still validated but there is no bucket to store it in.
		s.report(num, nil, h.Problems...)
	default:
		if existing := s.release.Category(h.Name); existing != nil {
			s.category = existing
			s.report(num, &existing.Problems,
				newProblem("Change type %q is duplicated in %s", h.Name, s.release.Version))
		} else {
			s.category = s.release.addCategory(h.Name, num)
		}
		s.report(num, &s.category.Problems, h.Problems...)
	}
	return h.Fixed
}

func (s *scanner) scanEntry(num int, line string) string {
	e := ParseEntry(line)
	e.Line = num
	for i := range e.Problems {
		e.Problems[i].Line = num
	}
	s.report(num, nil, e.Problems...)

	if !e.Valid {
		return e.Fixed
	}

	if !s.inCategory {
		p := newProblem("Entry for PR #%d is outside of a change type: %q", e.PRNumber, line)
		s.report(num, &e.Problems, p)
		return e.Fixed
	}
	if s.category == nil {
		return e.Fixed
	}

	if !s.category.addEntry(e) {
		p := newProblem("PR #%d is duplicated in %s - %s", e.PRNumber, s.release.Version, s.category.Name)
		s.report(num, &e.Problems, p)
	}
	return e.Fixed
}

// report stamps problems with their line number, attaches them to the owning
// construct when there is one and appends them to the document's list.
func (s *scanner) report(num int, owner *[]Problem, problems ...Problem) {
	for _, p := range problems {
		p.Line = num
		if owner != nil {
			*owner = append(*owner, p)
		}
		s.changelog.Problems = append(s.changelog.Problems, p)
	}
}
