package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FixedLines returns the document with every auto-correctable line replaced
// by its corrected form. Lines the parsers ignore are returned unchanged.
func (c *Changelog) FixedLines() []string {
	out := make([]string, len(c.fixed))
	for i, line := range c.fixed {
		if c.crlf[i] {
			line += "\r"
		}
		out[i] = line
	}
	return out
}

// FixedContent returns the corrected document as a single string.
func (c *Changelog) FixedContent() string {
	return strings.Join(c.FixedLines(), "\n")
}

// Changed reports whether fixing would modify the document.
func (c *Changelog) Changed() bool {
	for i := range c.lines {
		if c.lines[i] != c.fixed[i] {
			return true
		}
	}
	return false
}

// WriteFixed writes the corrected document to path, keeping the file mode
// of an existing file. Problems that cannot be corrected automatically stay
// in the written document.
func (c *Changelog) WriteFixed(path string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return atomicWriteToFile(path, []byte(c.FixedContent()), mode)
}

// atomicWriteToFile writes data to path using temp file + rename pattern.
func atomicWriteToFile(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
