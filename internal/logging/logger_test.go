package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"holamundo/internal/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "holamundo.log")
	logger, err := New(config.LogConfig{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("run", "abc"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"shown"`)
	assert.Contains(t, string(data), `"run":"abc"`)
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = New(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
