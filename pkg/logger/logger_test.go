package logger

import (
	"os"
	"path/filepath"
	"testing"

	"codeshin_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log := New("release", path)
	log.Debug("hidden")
	log.Info("recommendation generated", zap.Uint("learner_id", 7))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"recommendation generated"`)
	assert.Contains(t, string(data), `"learner_id":7`)
	assert.Contains(t, string(data), `"service":"codeshin-backend"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_DebugMode(t *testing.T) {
	log := New("debug", filepath.Join(t.TempDir(), "app.log"))
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestInitLogger_UsesConfiguredFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	var cfg config.Config
	cfg.Server.Mode = "release"
	cfg.Log.File = filepath.Join(t.TempDir(), "codeshin.log")
	InitLogger(&cfg)
	Log.Warn("cache unavailable")
	_ = Log.Sync()

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache unavailable")
}
