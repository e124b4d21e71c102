package changelog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var failProblems = []string{
	`PR link is not matching PR number 1948: "https://github.com/evmos/evmos/pull/1949"`,
	`"ABI" should be used instead of "ABi"`,
	`"outpost" should be used instead of "Outpost"`,
	"PR description should end with a dot: \"Fixed the problem `gas_used` is 0\"",
	`"Invalid Category" is not a valid change type`,
	`Change type "Bug Fixes" is duplicated in Unreleased`,
	`Release "v15.0.0" is duplicated in the changelog`,
	`Change type "API Breaking" is duplicated in v15.0.0`,
}

var structuralProblems = []string{
	`"Invalid Category" is not a valid change type`,
	`Change type "Bug Fixes" is duplicated in Unreleased`,
	`Release "v15.0.0" is duplicated in the changelog`,
	`Change type "API Breaking" is duplicated in v15.0.0`,
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()

	expected := []ReleaseResult{
		{Version: "Unreleased", ChangeTypes: []ChangeTypeResult{
			{Name: "State Machine Breaking", Entries: []EntryResult{
				{PR: 1922, Description: "Add `secp256r1` curve precompile."},
				{PR: 1949, Description: "Add `ClaimRewards` custom transaction."},
			}},
			{Name: "API Breaking", Entries: []EntryResult{
				{PR: 2015, Description: "Rename `inflation` module to `inflation/v1`."},
				{PR: 2078, Description: "Deprecate legacy EIP-712 ante handler."},
			}},
			{Name: "Improvements", Entries: []EntryResult{
				{PR: 1864, Description: "Add `--base-fee` and `--min-gas-price` flags."},
				{PR: 1912, Description: "Add Stride outpost interface and ABI."},
			}},
			{Name: "Bug Fixes", Entries: []EntryResult{
				{PR: 1801, Description: "Fixed the problem `gas_used` is 0."},
			}},
		}},
		{Version: "v15.0.0", ChangeTypes: []ChangeTypeResult{
			{Name: "API Breaking", Entries: []EntryResult{
				{PR: 1862, Description: "Add Authorization Grants to the Vesting extension."},
			}},
		}},
	}

	c, err := Load(filepath.Join("testdata", "changelog_ok.md"))
	require.NoError(t, err)

	assert.True(t, c.Valid())
	assert.Empty(t, c.Problems, "expected no problems")
	assert.Equal(t, expected, c.Result())
	assert.False(t, c.Changed())

	// Document order is preserved at every level.
	assert.Equal(t, []string{"Unreleased", "v15.0.0"}, c.ListReleases())
	unreleased := c.Release("Unreleased")
	require.NotNil(t, unreleased)
	var names []string
	for _, cat := range unreleased.Categories {
		names = append(names, cat.Name)
	}
	assert.Equal(t, []string{"State Machine Breaking", "API Breaking", "Improvements", "Bug Fixes"}, names)

	smb := unreleased.Category("State Machine Breaking")
	require.NotNil(t, smb)
	require.Len(t, smb.Entries, 2)
	assert.Equal(t, 1922, smb.Entries[0].PRNumber)
	assert.Equal(t, 1949, smb.Entries[1].PRNumber)
	assert.Equal(t, "distribution-precompile", smb.Entry(1949).Scope)
	assert.Equal(t, "2023-11-09", c.Release("v15.0.0").Date)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	c, err := Load(filepath.Join("testdata", "changelog_fail.md"))
	require.NoError(t, err)

	assert.False(t, c.Valid())
	assert.Equal(t, failProblems, messages(c.Problems))

	// Problems carry the line that produced them.
	assert.Equal(t, 7, c.Problems[0].Line)
	assert.Equal(t, 31, c.Problems[6].Line)
	assert.Equal(t, 33, c.Problems[7].Line)

	// Entries under a repeated release or change type merge into the first bucket.
	apiBreaking := c.Release("v15.0.0").Category("API Breaking")
	require.NotNil(t, apiBreaking)
	assert.Len(t, apiBreaking.Entries, 2)
	assert.NotNil(t, apiBreaking.Entry(1863))

	bugFixes := c.Release("Unreleased").Category("Bug Fixes")
	require.NotNil(t, bugFixes)
	assert.Len(t, bugFixes.Entries, 2)
	assert.Equal(t, []string{`Change type "Bug Fixes" is duplicated in Unreleased`}, messages(bugFixes.Problems))

	// An invalid change type is still used as a key.
	invalid := c.Release("Unreleased").Category("Invalid Category")
	require.NotNil(t, invalid)
	assert.NotNil(t, invalid.Entry(2078))

	// The corrected description is stored.
	assert.Equal(t, "Add Stride outpost interface and ABI.",
		c.Release("Unreleased").Category("Improvements").Entry(1912).Description)
}

func TestLoad_Fix(t *testing.T) {
	t.Parallel()

	path := copyFixture(t, "changelog_fail.md")

	c, err := Load(path)
	require.NoError(t, err)
	assert.False(t, c.Valid())
	assert.Equal(t, failProblems, messages(c.Problems))
	assert.True(t, c.Changed())
	require.NoError(t, c.WriteFixed(path))

	fixed, err := Load(path)
	require.NoError(t, err)
	assert.False(t, fixed.Valid())
	assert.Equal(t, structuralProblems, messages(fixed.Problems))
	assert.False(t, fixed.Changed(), "fixing twice should be a no-op")
}

func TestLoad_FixKeepsFileMode(t *testing.T) {
	t.Parallel()

	path := copyFixture(t, "changelog_fail.md")
	require.NoError(t, os.Chmod(path, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.WriteFixed(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestLoad_NonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join("testdata", "nonexistent_file.md"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestParse_Scenarios(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		doc          string
		wantProblems []string
		wantResult   []ReleaseResult
	}{
		"empty document": {
			doc: "",
		},
		"lower case change type is accepted": {
			doc: "## Unreleased\n### bug fixes\n- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it.\n",
			wantResult: []ReleaseResult{
				{Version: "Unreleased", ChangeTypes: []ChangeTypeResult{
					{Name: "Bug Fixes", Entries: []EntryResult{{PR: 1, Description: "Fix it."}}},
				}},
			},
		},
		"change type before any release": {
			doc: "### Bug Fixes\n- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it.\n## Unreleased\n",
			wantProblems: []string{
				`Change type "Bug Fixes" is outside of a release: "### Bug Fixes"`,
				`Entry for PR #1 is outside of a change type: "- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it."`,
			},
			wantResult: []ReleaseResult{{Version: "Unreleased"}},
		},
		"entry directly under a release": {
			doc: "## Unreleased\n- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it.\n",
			wantProblems: []string{
				`Entry for PR #1 is outside of a change type: "- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it."`,
			},
			wantResult: []ReleaseResult{{Version: "Unreleased"}},
		},
		"unidentified release is validated but not stored": {
			doc: "## Release one\n### Bug Fixes\n- (evm) [#1](https://github.com/evmos/evmos/pull/1) fix it\n## Unreleased\n",
			wantProblems: []string{
				`Malformed release header: "## Release one"`,
				`PR description should start with capital letter: "fix it"`,
				`PR description should end with a dot: "Fix it"`,
			},
			wantResult: []ReleaseResult{{Version: "Unreleased"}},
		},
		"duplicate PR keeps the first entry": {
			doc: strings.Join([]string{
				"## Unreleased",
				"### Improvements",
				"- (evm) [#1](https://github.com/evmos/evmos/pull/1) First description.",
				"- (evm) [#1](https://github.com/evmos/evmos/pull/1) Second description.",
			}, "\n"),
			wantProblems: []string{`PR #1 is duplicated in Unreleased - Improvements`},
			wantResult: []ReleaseResult{
				{Version: "Unreleased", ChangeTypes: []ChangeTypeResult{
					{Name: "Improvements", Entries: []EntryResult{{PR: 1, Description: "First description."}}},
				}},
			},
		},
		"same PR in different change types": {
			doc: strings.Join([]string{
				"## Unreleased",
				"### Improvements",
				"- (evm) [#1](https://github.com/evmos/evmos/pull/1) Improve it.",
				"### Bug Fixes",
				"- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it.",
			}, "\n"),
			wantResult: []ReleaseResult{
				{Version: "Unreleased", ChangeTypes: []ChangeTypeResult{
					{Name: "Improvements", Entries: []EntryResult{{PR: 1, Description: "Improve it."}}},
					{Name: "Bug Fixes", Entries: []EntryResult{{PR: 1, Description: "Fix it."}}},
				}},
			},
		},
		"other lines are ignored": {
			doc: strings.Join([]string{
				"# Changelog",
				"Some prose with - dashes and ## hashes.",
				"#### Notes",
				"## Unreleased",
				"",
				"    indented prose",
			}, "\n"),
			wantResult: []ReleaseResult{{Version: "Unreleased"}},
		},
		"malformed entry is reported and skipped": {
			doc: "## Unreleased\n### Bug Fixes\n- Fix it without a PR.\n",
			wantProblems: []string{
				`Malformed entry: "- Fix it without a PR."`,
			},
			wantResult: []ReleaseResult{
				{Version: "Unreleased", ChangeTypes: []ChangeTypeResult{{Name: "Bug Fixes"}}},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := ParseReader(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantProblems, messages(c.Problems))
			assert.Equal(t, tt.wantResult, c.Result())
			assert.Equal(t, len(tt.wantProblems) == 0, c.Valid())
		})
	}
}

func TestParse_FixPreservesLineEndings(t *testing.T) {
	t.Parallel()

	doc := "## unreleased\r\n### bug fixes\r\n- (evm) [#1](https://github.com/evmos/evmos/pull/2) fix it\r\n"
	c, err := ParseReader(strings.NewReader(doc))
	require.NoError(t, err)

	want := "## Unreleased\r\n### Bug Fixes\r\n- (evm) [#1](https://github.com/evmos/evmos/pull/1) Fix it.\r\n"
	assert.Equal(t, want, c.FixedContent())

	again, err := ParseReader(strings.NewReader(c.FixedContent()))
	require.NoError(t, err)
	assert.True(t, again.Valid())
}

func copyFixture(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "CHANGELOG.md")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParse_FixIsStable(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		desc      string
		wantFixed string
	}{
		"emphasized lower-case term": {
			desc:      "*outpost* support",
			wantFixed: "*Outpost* support.",
		},
		"quoted lower-case term": {
			desc:      `"outpost" support.`,
			wantFixed: `"Outpost" support.`,
		},
		"emphasized upper-case term": {
			desc:      "**evm** tracing",
			wantFixed: "**EVM** tracing.",
		},
		"module path": {
			desc:      "bump x/evm params",
			wantFixed: "Bump x/evm params.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lines := []string{
				"## Unreleased",
				"### Bug Fixes",
				"- (x) [#1](https://github.com/o/r/pull/1) " + tt.desc,
			}
			c := Parse(lines)
			fixed := c.FixedLines()
			assert.Equal(t, "- (x) [#1](https://github.com/o/r/pull/1) "+tt.wantFixed, fixed[2])

			again := Parse(fixed)
			assert.True(t, again.Valid(), "problems after fixing: %v", messages(again.Problems))
			assert.Equal(t, fixed, again.FixedLines())
		})
	}
}
