package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.log")
	l := NewIsolatedLogger(path)

	l.Info("Hub", "Client registered", map[string]interface{}{"client_id": "abc"})
	l.Debug("Hub", "dropped below file level", nil)
	l.Error("Hub", "write failed", map[string]interface{}{"error": "broken pipe"})
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}

	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "Hub", entries[0]["module"])
	assert.Equal(t, "Client registered", entries[0]["message"])
	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "broken pipe", entries[1]["error_ref"])
}

func TestNopLoggerAcceptsNilDetails(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Warn("Test", "nothing", nil)
		l.Error("Test", "nothing", nil)
	})
}
