package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New("debug", FormatJSON)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log = New("nonsense", FormatConsole)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"WARN":    zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	assert.NotZero(t, buf.Len(), "Expected log output from retrieved logger")
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"user_id": "123",
		"action":  "test",
	})

	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"user_id":"123"`)
	assert.Contains(t, buf.String(), `"action":"test"`)
}
