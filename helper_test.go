package paytracker

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
)

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// countingGateway returns rates, or err, and counts its calls.
type countingGateway struct {
	rates RateTable
	err   error
	calls atomic.Int32
}

func (g *countingGateway) Fetch(context.Context) (RateTable, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return g.rates, nil
}

// newTestCycle returns a ReportCycle printing into a syncBuffer.
func newTestCycle(rates RateGateway) (*ReportCycle, *syncBuffer) {
	out := new(syncBuffer)
	return &ReportCycle{
		Aggregator: NewAggregator(),
		Buffer:     new(PendingBuffer),
		Rates:      rates,
		Out:        out,
	}, out
}
