package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zap.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("loud"))
}

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estate.log")

	logger, err := New(Options{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Info("List fetched", zap.Int("count", 2))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"List fetched"`)
	assert.Contains(t, string(data), `"count":2`)
	assert.Contains(t, string(data), `"timestamp"`)
}
