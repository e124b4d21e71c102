package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		name    string
		want    log.Level
		wantErr bool
	}{
		"debug":        {name: "debug", want: log.DebugLevel},
		"info":         {name: "info", want: log.InfoLevel},
		"warn":         {name: "warn", want: log.WarnLevel},
		"warning":      {name: "WARNING", want: log.WarnLevel},
		"error":        {name: "error", want: log.ErrorLevel},
		"empty":        {name: "", want: log.WarnLevel},
		"unknown name": {name: "trace", want: log.WarnLevel, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "info"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("checking", "path", "CHANGELOG.md")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "checking")
	assert.Contains(t, out, "path=CHANGELOG.md")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
}

func TestPrintf(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Prefix: "git"})
	require.NoError(t, err)

	Printf(logger)("[git] repository root %s", "/tmp/repo")
	assert.Contains(t, buf.String(), "[git] repository root /tmp/repo")
	assert.Contains(t, buf.String(), "git")
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, "warn", opts.Level)
	assert.Equal(t, "changecheck", opts.Prefix)
}
