package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	section(&buf, "Request", `{"model":"claude-haiku"}`)
	assert.Contains(t, buf.String(), "Request")
	assert.Contains(t, buf.String(), `{"model":"claude-haiku"}`)

	buf.Reset()
	section(&buf, "Response", "")
	assert.Contains(t, buf.String(), "(not captured)")
}
