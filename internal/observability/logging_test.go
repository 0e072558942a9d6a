package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/recipe-book/recipe-book/internal/config"
)

func TestNewLogger(t *testing.T) {
	app := config.AppConfig{Name: "recipe-book", Env: "test", Version: "dev"}

	logger, err := NewLogger(config.LoggerConfig{Level: "WARN", Format: "json"}, app)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "nonsense", Format: "console"}, app)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
