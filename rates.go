package paytracker

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned by a RateGateway that could not produce a table.
var ErrUnavailable = errors.New("exchange rates unavailable")

// RateTable maps a currency code to its rate: units of that currency for one
// unit of the reference currency.
//
// A nil RateTable is valid and converts nothing.
type RateTable map[string]decimal.Decimal

// Rate returns the usable rate for code.
//
// Missing, zero or negative rates are not usable.
func (r RateTable) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := r[code]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// Codes returns the currency codes of r in ascending order.
func (r RateTable) Codes() []string {
	return slices.Sorted(maps.Keys(r))
}

// RateGateway supplies the current exchange rates.
type RateGateway interface {
	// Fetch returns the current rates relative to the gateway reference
	// currency. It must honor ctx cancellation.
	Fetch(ctx context.Context) (RateTable, error)
}

// RateGatewayFunc adapts a function into a RateGateway.
type RateGatewayFunc func(ctx context.Context) (RateTable, error)

func (f RateGatewayFunc) Fetch(ctx context.Context) (RateTable, error) { return f(ctx) }

// StaticRates is a RateGateway that always returns the same table.
type StaticRates RateTable

func (s StaticRates) Fetch(context.Context) (RateTable, error) {
	if s == nil {
		return nil, ErrUnavailable
	}
	return RateTable(s), nil
}
