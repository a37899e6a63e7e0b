package paytracker

import (
	"regexp"
	"strings"
)

// MaxExponent bounds the magnitude of an accepted amount: a non zero amount
// must lie within 1e-MaxExponent and 1e+MaxExponent, both included, whatever
// its notation.
//
// Amounts like "1e2000000000" are valid literals, but adding them to a
// regular amount would allocate a two billion digit integer.
const MaxExponent = 100

// paymentLine is the full grammar of a payment: a three characters code, a
// single space and a decimal literal.
var paymentLine = regexp.MustCompile(`^\w{3} [-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// Payment is a single parsed input line.
type Payment struct {
	Currency string
	Amount   Amount
}

// ParseLine parses a payment line like "EUR -12.50".
//
// The line is uppercased first. It returns false if the line does not match
// the payment grammar or if its currency is not recognized. Malformed lines
// are not errors, callers just drop them.
func ParseLine(line string) (Payment, bool) {
	line = strings.ToUpper(line)
	if !paymentLine.MatchString(line) {
		return Payment{}, false
	}
	code, literal, _ := strings.Cut(line, " ")
	if !IsRecognized(code) {
		return Payment{}, false
	}
	amount, err := ParseAmount(literal)
	if err != nil {
		return Payment{}, false
	}
	if amount.IsZero() {
		// "0e-2000000000" would otherwise rescale every later sum.
		amount = Amount{}
	}
	if !inRange(amount) {
		return Payment{}, false
	}
	return Payment{Currency: code, Amount: amount}, true
}

// inRange reports whether a is zero or within the MaxExponent magnitudes.
//
func inRange(a Amount) bool {
	if a.value.IsZero() {
		return true
	}
	// "1.5E3" is stored as 15 with exponent 2, its magnitude is 1e3.
	magnitude := int64(a.value.NumDigits()) + int64(a.value.Exponent()) - 1
	return magnitude >= -MaxExponent && magnitude <= MaxExponent
}

// ParseLines sums all valid lines per currency.
//
// It also returns the number of rejected lines.
func ParseLines(lines []string) (t Traffic, rejected int) {
	t = make(Traffic)
	for _, line := range lines {
		p, ok := ParseLine(line)
		if !ok {
			rejected++
			continue
		}
		t[p.Currency] = t[p.Currency].Add(p.Amount)
	}
	return t, rejected
}
