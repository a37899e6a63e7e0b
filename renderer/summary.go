package renderer

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/etnz/paytracker"
	"github.com/shopspring/decimal"
)

// Summary is the one-shot view of a payment file.
type Summary struct {
	Source    string // file name, if any
	Reference string
	Converted bool // true if rates were available

	Lines    int
	Accepted int
	Rejected int

	Rows []SummaryRow
}

// SummaryRow is a single non zero currency total.
type SummaryRow struct {
	Code      string
	Amount    string // 2 decimals, half-up
	Display   string // currency formatted, e.g "€100.00"
	Converted string // in reference currency, "-" if unknown
}

// NewSummary parses lines and builds the summary of their traffic.
//
// rates may be nil.
func NewSummary(source string, lines []string, reference string, rates paytracker.RateTable) *Summary {
	t, rejected := paytracker.ParseLines(lines)
	s := &Summary{
		Source:    source,
		Reference: reference,
		Converted: rates != nil,
		Lines:     len(lines),
		Accepted:  len(lines) - rejected,
		Rejected:  rejected,
	}
	for _, code := range t.Codes() {
		amount := t[code]
		if amount.IsZero() {
			continue
		}
		row := SummaryRow{
			Code:      code,
			Amount:    amount.String(),
			Display:   display(code, amount),
			Converted: "-",
		}
		if code == reference {
			row.Converted = amount.String()
		} else if rate, ok := rates.Rate(code); ok {
			if c, ok := amount.Convert(rate); ok {
				row.Converted = c.String()
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// display formats amount with the currency symbol and separators.
func display(code string, amount paytracker.Amount) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.String()
	}
	minor := amount.Decimal().Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return amount.String()
	}
	return money.New(minor.IntPart(), code).Display()
}
