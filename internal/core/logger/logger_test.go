package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdesk/internal/core/config"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := New(config.Log{
		Level: "debug",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("hello")
	undo := RedirectStdLog(l)
	log.Print("from std log")
	undo()
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), "from std log")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New(config.Log{Level: "loud"})
	defer cleanup()
	assert.False(t, l.Core().Enabled(-1)) // debug
	assert.True(t, l.Core().Enabled(0))   // info
}
