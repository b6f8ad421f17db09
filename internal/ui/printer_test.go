package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A bytes.Buffer is not a terminal, so output carries no escape codes.
func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Success("Logged in as %s", "dev@example.com")
	p.Failure("Invalid confirmation code. %d attempts remaining.", 2)
	p.Section("License Details")
	p.Field("License Key", "abc-123")
	p.Line("plain %d", 1)
	p.Blank()
	p.Hint("Run: code-checkout login")

	want := "✅ Logged in as dev@example.com\n" +
		"❌ Invalid confirmation code. 2 attempts remaining.\n" +
		"\nLicense Details\n" +
		"  License Key: abc-123\n" +
		"plain 1\n" +
		"\n" +
		"Run: code-checkout login\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Divider(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Divider()
	assert.Equal(t, "----------------------------------------\n", buf.String())
}

func TestPrinter_Writer(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, NewPrinter(&buf).Writer())
}
