package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"content-creator/internal/common/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestZapWrapper_FieldsArePropagated(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"component": "pipeline"})

	log.Info("generated", map[string]interface{}{"fallback": true})
	log.WithError(assert.AnError).Error("failed", nil)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "pipeline", ctx["component"])
		assert.Equal(t, true, ctx["fallback"])
		assert.Equal(t, "failed", entries[1].Message)
		assert.Contains(t, entries[1].ContextMap(), "error")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Name = "content-creator"
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"

	log := FromConfig(cfg)
	assert.NotNil(t, log)
	log.Debug("dropped", nil)
}
