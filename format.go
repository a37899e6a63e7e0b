package paytracker

import (
	"fmt"
	"strings"
)

// Separator is printed before each non empty report.
const Separator = "---"

// FormatEntry renders a single traffic entry, e.g "EUR 100.00 (USD 123.20)".
//
// The conversion is omitted for the reference currency itself, and when
// rates holds no usable rate for code.
func FormatEntry(code string, amount Amount, reference string, rates RateTable) string {
	s := code + " " + amount.String()
	if code == reference {
		return s
	}
	rate, ok := rates.Rate(code)
	if !ok {
		return s
	}
	converted, ok := amount.Convert(rate)
	if !ok {
		return s
	}
	return fmt.Sprintf("%s (%s %s)", s, reference, converted)
}

// FormatReport renders all non zero entries of t, one per line in code
// order, below a Separator line.
//
// It returns "" if no entry qualifies.
func FormatReport(t Traffic, reference string, rates RateTable) string {
	var entries []string
	for _, code := range t.Codes() {
		amount := t[code]
		if amount.IsZero() {
			continue
		}
		entries = append(entries, FormatEntry(code, amount, reference, rates))
	}
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(Separator)
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return b.String()
}
