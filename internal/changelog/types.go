package changelog

import "fmt"

// Unreleased is the identifier of the section collecting changes that have
// not shipped yet.
const Unreleased = "Unreleased"

// Problem is a single finding tied to the line that produced it.
// Line is 1-based; zero means the problem is not tied to a document line.
type Problem struct {
	Line    int    `yaml:"line"`
	Message string `yaml:"message"`
}

func (p Problem) String() string {
	return p.Message
}

func newProblem(format string, args ...any) Problem {
	return Problem{Message: fmt.Sprintf(format, args...)}
}

// Changelog is the result of one validation run over a document.
// Releases are kept in order of first appearance.
type Changelog struct {
	Path     string
	Releases []*Release
	Problems []Problem

	lines  []string
	fixed  []string
	crlf   []bool
	byName map[string]*Release
}

// Release is a "## " section identified by its version or "Unreleased".
type Release struct {
	Version    string
	Date       string
	Line       int
	Categories []*Category
	Problems   []Problem

	byName map[string]*Category
}

// Category is a "### " change type section within a release.
type Category struct {
	Name     string
	Line     int
	Entries  []*Entry
	Problems []Problem

	byPR map[int]*Entry
}

// Entry is a single bullet line referencing a pull request.
type Entry struct {
	PRNumber    int
	PRLink      string
	Scope       string
	Description string
	Line        int
	Raw         string
	Fixed       string
	Problems    []Problem
	Valid       bool
}

// Valid reports whether the run found no problems.
func (c *Changelog) Valid() bool {
	return len(c.Problems) == 0
}

// Release returns the release with the given identifier, or nil.
func (c *Changelog) Release(version string) *Release {
	return c.byName[version]
}

// Category returns the category with the given name, or nil.
func (r *Release) Category(name string) *Category {
	return r.byName[name]
}

// Entry returns the entry for the given PR number, or nil.
func (c *Category) Entry(pr int) *Entry {
	return c.byPR[pr]
}

func (c *Changelog) addRelease(version string, date string, line int) *Release {
	if c.byName == nil {
		c.byName = make(map[string]*Release)
	}
	r := &Release{Version: version, Date: date, Line: line, byName: make(map[string]*Category)}
	c.Releases = append(c.Releases, r)
	c.byName[version] = r
	return r
}

func (r *Release) addCategory(name string, line int) *Category {
	c := &Category{Name: name, Line: line, byPR: make(map[int]*Entry)}
	r.Categories = append(r.Categories, c)
	r.byName[name] = c
	return c
}

// addEntry inserts the entry unless its PR number is already present.
// The first entry for a PR number is kept.
func (c *Category) addEntry(e *Entry) bool {
	if _, ok := c.byPR[e.PRNumber]; ok {
		return false
	}
	c.Entries = append(c.Entries, e)
	c.byPR[e.PRNumber] = e
	return true
}
