package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, LevelWarn)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	log.Warn("hold conflict conn=%s", "a")
	log.Error("publish failed: %v", "timeout")

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "hold conflict conn=a")
	assert.Contains(t, out, "level=ERROR")
}

func TestLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "verbose")

	log.Debug("hidden")
	log.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	log, err := New(path, LevelInfo)
	require.NoError(t, err)
	log.Info("started on :%d", 8080)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started on :8080")
}
