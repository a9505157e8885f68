package logging

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	previous := GetLogLevel()
	t.Cleanup(func() {
		SetOutput(nil)
		SetLogLevel(previous)
		SetTagFilter("")
	})
	return buf
}

func TestShouldLogTag(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		tag    string
		want   bool
	}{
		{"no filter", "", "executor", true},
		{"included", "executor", "executor", true},
		{"included prefix", "handler", "handler:records", true},
		{"not included", "executor", "handler", false},
		{"excluded", "-executor", "executor", false},
		{"excluded only", "-executor", "handler", true},
		{"exclusion wins", "executor,-executor", "executor", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetTagFilter(tt.filter)
			defer SetTagFilter("")
			assert.Equal(t, tt.want, shouldLogTag(tt.tag))
		})
	}
}

func TestLogLevel(t *testing.T) {
	buf := captureLogs(t)

	SetLogLevel(LogLevelInfo)
	log := New("executor")
	log.Debugf("hidden %d", 1)
	log.Infof("visible %d", 2)
	log.Error("request failed: boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible 2")
	assert.Contains(t, out, "request failed: boom")
	assert.Contains(t, out, `"tag":"executor"`)

	buf.Reset()
	SetLogLevel(LogLevelWarn)
	log.Infof("hidden at warn")
	log.Error("still visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "still visible")
}

func TestSetLogLevel_IgnoresOutOfRange(t *testing.T) {
	captureLogs(t)
	SetLogLevel(LogLevelDebug)
	SetLogLevel(9)
	assert.Equal(t, LogLevelDebug, GetLogLevel())
}

func TestFilteredTagIsNoOp(t *testing.T) {
	buf := captureLogs(t)
	SetTagFilter("-handler")

	New("handler").Error("dropped")
	assert.Empty(t, buf.String())
}

func TestErrorTag(t *testing.T) {
	err := WithTag("executor", errors.New("boom"))
	wrapped := fmt.Errorf("outer: %w", err)

	assert.Equal(t, "executor", ErrorTag(wrapped, "cli"))
	assert.Equal(t, "cli", ErrorTag(errors.New("plain"), "cli"))
	assert.Nil(t, WithTag("executor", nil))
	assert.EqualError(t, wrapped, "outer: boom")
}
