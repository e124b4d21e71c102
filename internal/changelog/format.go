package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and line numbers
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

var (
	headerStyle  = color.New(color.FgRed, color.Bold)
	lineStyle    = color.New(color.Faint)
	problemStyle = color.New(color.FgYellow)
	okStyle      = color.New(color.FgGreen, color.Bold)
)

// FormatReport writes the list of problems found in the changelog. Nothing
// is written for a valid changelog.
func FormatReport(c *Changelog, w io.Writer, opts FormatOptions) error {
	if c.Valid() {
		return nil
	}

	header := fmt.Sprintf("Changelog file is not valid - check the following %d problems:", len(c.Problems))
	if c.Path != "" && !opts.Plain {
		header = fmt.Sprintf("%s is not valid - check the following %d problems:", c.Path, len(c.Problems))
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s\n\n%s\n", header, strings.Join(problemMessages(c.Problems), "\n"))
		return err
	}

	if _, err := fmt.Fprintf(w, "%s\n\n", headerStyle.Sprint(header)); err != nil {
		return err
	}

	width := resolveWidth(opts.MaxWidth)
	numWidth := len(fmt.Sprint(maxLine(c.Problems)))
	for _, p := range c.Problems {
		prefix := fmt.Sprintf("  %*d  ", numWidth, p.Line)
		wrapped := wrapText(p.Message, width-len(prefix), strings.Repeat(" ", len(prefix)))
		if _, err := fmt.Fprintf(w, "%s%s\n", lineStyle.Sprint(prefix), problemStyle.Sprint(wrapped)); err != nil {
			return err
		}
	}
	return nil
}

// FormatFixed writes a one-line note about a fixed file.
func FormatFixed(path string, w io.Writer, opts FormatOptions) error {
	msg := fmt.Sprintf("fixed %s", path)
	if opts.Plain {
		_, err := fmt.Fprintln(w, msg)
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", okStyle.Sprint("✓"), msg)
	return err
}

// FormatSummary writes an aligned table of releases and change types with
// their entry and problem counts.
func FormatSummary(c *Changelog, w io.Writer, opts FormatOptions) error {
	rows := [][]string{{"RELEASE", "CHANGE TYPE", "ENTRIES", "PROBLEMS"}}
	for _, r := range c.Releases {
		if len(r.Categories) == 0 {
			rows = append(rows, []string{r.Version, "-", "0", fmt.Sprint(len(r.Problems))})
		}
		for _, cat := range r.Categories {
			rows = append(rows, []string{
				r.Version,
				cat.Name,
				fmt.Sprint(len(cat.Entries)),
				fmt.Sprint(len(cat.Problems) + entryProblemCount(cat)),
			})
		}
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if i == 0 && !opts.Plain {
			line = color.New(color.Bold).Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func entryProblemCount(cat *Category) int {
	n := 0
	for _, e := range cat.Entries {
		n += len(e.Problems)
	}
	return n
}

func problemMessages(problems []Problem) []string {
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Message
	}
	return msgs
}

func maxLine(problems []Problem) int {
	n := 0
	for _, p := range problems {
		n = max(n, p.Line)
	}
	return n
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || runewidth.StringWidth(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for runewidth.StringWidth(remaining) > maxWidth {
		// Break at the last space that fits, or hard-break when there is none.
		cut := runewidth.Truncate(remaining, maxWidth, "")
		breakPoint := strings.LastIndex(cut, " ")
		if breakPoint <= 0 {
			breakPoint = len(cut)
		}
		if breakPoint == 0 {
			break
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
