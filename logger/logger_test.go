package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]zerolog.Level{
		LOG_LEVEL_DEBUG: zerolog.DebugLevel,
		LOG_LEVEL_INFO:  zerolog.InfoLevel,
		LOG_LEVEL_WARN:  zerolog.WarnLevel,
		LOG_LEVEL_ERROR: zerolog.ErrorLevel,
		LOG_LEVEL_FATAL: zerolog.FatalLevel,
		LOG_LEVEL_PANIC: zerolog.PanicLevel,
		"verbose":       zerolog.InfoLevel,
		"":              zerolog.InfoLevel,
	} {
		assert.Equal(t, expected, ParseLevel(name), name)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv(logLevelEnv, LOG_LEVEL_WARN)
	assert.Equal(t, zerolog.WarnLevel, NewLogger("test").GetLevel())
}
