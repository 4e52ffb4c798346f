package debug

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitTogglesDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Init(false)
	})

	Init(false)
	assert.False(t, Enabled())
	Debug("hidden", "k", 1)
	Info("hidden too")
	assert.Empty(t, buf.String())

	Error("shown", "table", "events")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "table=events")

	buf.Reset()
	Init(true)
	assert.True(t, Enabled())
	With("component", "pool").Debug("acquired")
	assert.Contains(t, buf.String(), "component=pool")
	assert.Contains(t, buf.String(), "acquired")
}
