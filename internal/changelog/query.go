package changelog

import (
	"fmt"
	"strings"
)

// ReleaseNotFoundError is returned when a requested release doesn't exist.
type ReleaseNotFoundError struct {
	Version           string
	AvailableReleases []string
}

func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("release %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableReleases, ", "))
}

// FindRelease looks up a release by identifier. Accepts both "v15.0.0" and
// "15.0.0", and "unreleased" in any case.
func (c *Changelog) FindRelease(version string) (*Release, error) {
	normalized := NormalizeVersion(version)
	for _, r := range c.Releases {
		if NormalizeVersion(r.Version) == normalized {
			return r, nil
		}
	}
	return nil, &ReleaseNotFoundError{
		Version:           version,
		AvailableReleases: c.ListReleases(),
	}
}

// ListReleases returns the release identifiers in document order.
func (c *Changelog) ListReleases() []string {
	versions := make([]string, len(c.Releases))
	for i, r := range c.Releases {
		versions[i] = r.Version
	}
	return versions
}

// EntryCount returns the number of stored entries across all releases.
func (c *Changelog) EntryCount() int {
	count := 0
	for _, r := range c.Releases {
		count += r.EntryCount()
	}
	return count
}

// EntryCount returns the number of stored entries in the release.
func (r *Release) EntryCount() int {
	count := 0
	for _, cat := range r.Categories {
		count += len(cat.Entries)
	}
	return count
}

// Only keeps the given release and drops the rest. Problems are not touched:
// they still describe the whole document.
func (c *Changelog) Only(r *Release) *Changelog {
	filtered := *c
	filtered.Releases = []*Release{r}
	filtered.byName = map[string]*Release{r.Version: r}
	return &filtered
}
