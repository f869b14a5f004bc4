package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesTerminalAndJSONFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	l := New(Options{Dir: dir, Service: "test", MinLevel: DEBUG, Terminal: &out})
	l.Info("checkin", "scan accepted")
	l.Close()

	assert.Contains(t, out.String(), "[CHECKIN")
	assert.Contains(t, out.String(), "scan accepted")

	files, err := filepath.Glob(filepath.Join(dir, "test-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry.Category == "CHECKIN" {
			found = true
			assert.Equal(t, "INFO", entry.Level)
			assert.Equal(t, "scan accepted", entry.Message)
		}
	}
	assert.True(t, found)
}

func TestLoggerRespectsMinLevel(t *testing.T) {
	var out bytes.Buffer
	l := New(Options{MinLevel: WARN, Terminal: &out})

	l.Info("API", "ignored")
	l.Warn("API", "kept")

	assert.NotContains(t, out.String(), "ignored")
	assert.Contains(t, out.String(), "kept")
}

func TestFatalUsesExitHook(t *testing.T) {
	var code int
	l := NewNopLogger()
	l.exit = func(c int) { code = c }

	l.Fatal("APP", "boom")

	assert.Equal(t, 1, code)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}
