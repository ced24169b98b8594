package tulog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", nil)
	l.SetOutput(&buf)
	l.SetLevel(WARN)

	l.Infof("should not appear")
	assert.Empty(t, buf.String())

	l.Warnf("should appear: %d", 42)
	assert.Contains(t, buf.String(), "should appear: 42")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "test")
}

func TestLoggerDebugfAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", nil)
	l.SetOutput(&buf)
	l.SetLevel(DEBUG)

	l.Debugf("detail")
	assert.Contains(t, buf.String(), "detail")
}

func TestChildLoggerInheritsParentLevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := New("parent", nil)
	parent.SetOutput(&buf)
	parent.SetLevel(ERROR)

	child := New("child", parent)
	child.Warnf("should be filtered")
	assert.Empty(t, buf.String())

	child.Errorf("boom")
	out := buf.String()
	assert.Contains(t, out, "boom")
	assert.True(t, strings.Contains(out, "parent/child"), "child name should be prefixed with parent name, got %q", out)
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	assert.NotNil(t, Default)
	assert.Equal(t, WARN, Default.level)
}
