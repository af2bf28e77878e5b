package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igauth/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"empty level defaults", &config.LoggingConfig{}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "igauth.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNewWithWriterFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.DebugLevel)

	l.WithField("component", "oauth").
		WithError(errors.New("boom")).
		DebugWithFields("exchanging code", map[string]interface{}{"attempt": 1})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "igauth", line["app"])
	assert.Equal(t, "oauth", line["component"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, float64(1), line["attempt"])
	assert.Equal(t, "exchanging code", line["message"])
}

func TestNewWithWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(&buf, zerolog.InfoLevel)
	_ = parent.WithField("child", true)

	parent.Info("parent")
	assert.NotContains(t, buf.String(), "child")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "********", Redact("short"))
	assert.Equal(t, "abcd...wxyz", Redact("abcdefghijklmnopqrstuvwxyz"))
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://api.instagram.com/v1/users/self?access_token=1234567890abcdef&count=2")
	assert.NotContains(t, got, "1234567890abcdef")
	assert.Contains(t, got, "count=2")
	assert.Contains(t, got, "access_token=1234...cdef")

	plain := "https://api.instagram.com/v1/tags/go"
	assert.Equal(t, plain, RedactURL(plain))
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("plain")
	tl.WithField("user", "alice").WarnWithFields("with fields", map[string]interface{}{"n": 2})
	tl.WithError(errors.New("bad")).Error("failed")

	messages := tl.GetMessages()
	require.Len(t, messages, 3)
	assert.Equal(t, "INFO", messages[0].Level)
	assert.Nil(t, messages[0].Fields)
	assert.Equal(t, map[string]interface{}{"user": "alice", "n": 2}, messages[1].Fields)
	assert.EqualError(t, messages[2].Error, "bad")

	assert.True(t, tl.HasMessage("with fields"))
	assert.True(t, tl.HasError())
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("k", "v").Info("nothing")
	assert.NotNil(t, l.GetZerolog())
}
