package main

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

var numbers = message.NewPrinter(language.English)

func formatCount(n int) string {
	return numbers.Sprintf("%d", n)
}

func formatPrice(price float64, currency string) string {
	if currency == "" {
		return numbers.Sprintf("$%.2f", price)
	}
	return numbers.Sprintf("$%.2f %s", price, currency)
}

// parseTimestamp parses an RFC 3339 timestamp into local time, or a bare
// date as-is.
func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Local(), true
	}
	if t, err := time.Parse(validation.DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// formatDate renders an API timestamp as a local calendar date. Values that
// do not parse are shown as received.
func formatDate(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(s string) string {
	t, ok := parseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006 3:04:05 PM")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
