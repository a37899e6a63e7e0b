package paytracker

import (
	"maps"
	"slices"
	"sync"
)

// Traffic is the net amount per currency code.
//
// A missing code means zero traffic. A code that nets to zero is kept.
type Traffic map[string]Amount

// Clone returns an independent copy of t.
func (t Traffic) Clone() Traffic {
	c := make(Traffic, len(t))
	maps.Copy(c, t)
	return c
}

// Codes returns the currency codes of t in ascending order.
func (t Traffic) Codes() []string {
	return slices.Sorted(maps.Keys(t))
}

// Equal reports whether t and u hold the same codes with equal amounts.
func (t Traffic) Equal(u Traffic) bool {
	return maps.EqualFunc(t, u, Amount.Equal)
}

// merge adds all amounts of u into t.
func (t Traffic) merge(u Traffic) {
	for code, amount := range u {
		t[code] = t[code].Add(amount)
	}
}

// Aggregator owns the authoritative running Traffic.
//
// It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	traffic Traffic
}

// NewAggregator returns an Aggregator with no traffic.
func NewAggregator() *Aggregator {
	return &Aggregator{traffic: make(Traffic)}
}

// MergeAndReset parses lines, adds the valid ones to the running traffic and
// returns a copy of the result.
//
// Invalid lines are silently dropped. Within the batch, amounts of the same
// code are summed before being merged. The whole operation is atomic: no
// other call ever observes a partially merged traffic.
func (a *Aggregator) MergeAndReset(lines []string) Traffic {
	batch, rejected := ParseLines(lines)
	linesMerged.Add(float64(len(lines) - rejected))
	linesRejected.Add(float64(rejected))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.traffic.merge(batch)
	trackedCurrencies.Set(float64(len(a.traffic)))
	return a.traffic.Clone()
}

// Snapshot returns a copy of the running traffic.
func (a *Aggregator) Snapshot() Traffic {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.traffic.Clone()
}
