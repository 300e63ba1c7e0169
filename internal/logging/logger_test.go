package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
	assert.NotNil(t, Logger.logger)
}

func TestInitLogger_WithLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
}

func TestInitLogger_WithInvalidLogLevel(t *testing.T) {
	// Invalid level falls back to the production default
	os.Setenv("LOG_LEVEL", "invalid")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger()
	require.NoError(t, err)
	assert.NotNil(t, Logger)
}

func TestSafeLogger_Levels(t *testing.T) {
	logger := &SafeLogger{logger: zap.NewNop()}

	logger.Info("test message", zap.String("key", "value"))
	logger.Warn("test warning", zap.Int("count", 42))
	logger.Debug("test debug", zap.Bool("flag", true))
	logger.Error("test error", zap.String("error", "something went wrong"))
}

func TestSafeLogger_NilLogger(t *testing.T) {
	logger := &SafeLogger{logger: nil}

	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
	logger.Sync()
}

func TestSafeLogger_NilSafeLogger(t *testing.T) {
	var logger *SafeLogger

	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
}

func TestSafeLogger_With(t *testing.T) {
	logger := &SafeLogger{logger: zap.NewNop()}

	newLogger := logger.With(zap.String("key", "value"), zap.Int("count", 42))

	require.NotNil(t, newLogger)
	assert.NotNil(t, newLogger.logger)
	newLogger.Info("test message")
}

func TestSafeLogger_With_NilLogger(t *testing.T) {
	logger := &SafeLogger{logger: nil}

	assert.Equal(t, logger, logger.With(zap.String("key", "value")))
}

func TestSafeLogger_With_NilSafeLogger(t *testing.T) {
	var logger *SafeLogger

	assert.Nil(t, logger.With(zap.String("key", "value")))
}

func TestSafeLogger_Unwrap(t *testing.T) {
	zapLogger := zap.NewNop()
	logger := New(zapLogger)

	assert.Equal(t, zapLogger, logger.Unwrap())

	var nilLogger *SafeLogger
	assert.NotNil(t, nilLogger.Unwrap())
}
