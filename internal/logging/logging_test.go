package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DebugRaisesLevel(t *testing.T) {
	logger := New(Config{Debug: true})
	assert.True(t, logger.Enabled(nil, slog.LevelDebug))
}

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	logger := New(Config{})
	assert.False(t, logger.Enabled(nil, slog.LevelDebug))
	assert.True(t, logger.Enabled(nil, slog.LevelInfo))
}

func TestNew_FilePathUsesJSONHandler(t *testing.T) {
	logger := New(Config{FilePath: filepath.Join(t.TempDir(), "tern.log")})
	logger.Info("hello")
}

func TestNew_ColorSelectsColorHandler(t *testing.T) {
	logger := New(Config{Color: true})
	_, ok := logger.Handler().(*colorHandler)
	assert.True(t, ok)
}

func TestColorHandler_WritesLevelMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo))
	logger.Info("applied migration", slog.String("version", "20230101000000"))

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "applied migration")
	assert.Contains(t, out, "version=20230101000000")
}

func TestColorHandler_HonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo))
	logger.Debug("noise")
	assert.Empty(t, buf.String())
}

func TestColorHandler_WithAttrsPrependsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo)).With(slog.String("dialect", "mysql"))
	logger.Info("compiled")
	assert.Contains(t, buf.String(), "dialect=mysql")
}
