package paytracker

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

const (
	// DefaultInterval is the period between two reports.
	DefaultInterval = 60 * time.Second
	// DefaultFetchTimeout bounds a single rate fetch.
	DefaultFetchTimeout = 10 * time.Second
)

// ReportCycle periodically drains the pending buffer into the aggregator and
// prints the resulting traffic.
type ReportCycle struct {
	Aggregator *Aggregator
	Buffer     *PendingBuffer
	Rates      RateGateway // nil means no conversion at all
	Reference  string      // empty means DefaultReference
	Out        io.Writer

	Interval     time.Duration // zero means DefaultInterval
	Immediate    bool          // report once as soon as Run starts
	FetchTimeout time.Duration // zero means DefaultFetchTimeout

	// ReuseStaleRates uses the last successfully fetched table, for the
	// current cycle only, when the fetch fails.
	ReuseStaleRates bool

	// ExitMessage, if not empty, is printed by Flush before the report.
	ExitMessage string

	mu     sync.Mutex // serializes reports
	closed bool
	last   RateTable
}

// Run reports every Interval until ctx is done.
//
// Ticks that arrive while a report is still running are dropped, so a slow
// cycle is followed by at most one immediate report.
func (c *ReportCycle) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if c.Immediate {
		c.tick(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *ReportCycle) tick(ctx context.Context) {
	if err := c.report(ctx, "tick"); err != nil {
		log.Printf("Error printing report: %v", err)
	}
}

// Report runs one cycle now: drain, merge, fetch the rates and print.
//
// It does nothing once the cycle has been flushed.
func (c *ReportCycle) Report(ctx context.Context) error {
	return c.report(ctx, "manual")
}

// Flush runs a last report and closes the cycle: any later report is a no-op.
func (c *ReportCycle) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ExitMessage != "" {
		if _, err := fmt.Fprintln(c.Out, c.ExitMessage); err != nil {
			return err
		}
	}
	return c.cycle(ctx, "flush")
}

func (c *ReportCycle) report(ctx context.Context, trigger string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.cycle(ctx, trigger)
}

// cycle must be called with c.mu held.
func (c *ReportCycle) cycle(ctx context.Context, trigger string) error {
	start := time.Now()
	defer func() { reportDuration.Observe(time.Since(start).Seconds()) }()
	reportCycles.WithLabelValues(trigger).Inc()

	// The merge happens before anything that can fail.
	traffic := c.Aggregator.MergeAndReset(c.Buffer.Drain())

	// Nothing to convert, do not bother the rate provider.
	if !hasTraffic(traffic) {
		return nil
	}
	rates := c.fetch(ctx)
	report := FormatReport(traffic, c.reference(), rates)
	_, err := io.WriteString(c.Out, report)
	return err
}

// fetch returns the rates for the current cycle, or nil.
func (c *ReportCycle) fetch(ctx context.Context) RateTable {
	if c.Rates == nil {
		return nil
	}
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	// A flush triggered by a cancelled context still deserves its rates.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	rates, err := c.Rates.Fetch(ctx)
	if err != nil {
		rateFetches.WithLabelValues("failure").Inc()
		log.Printf("Error updating exchange rates: %v", err)
		if c.ReuseStaleRates {
			return c.last
		}
		return nil
	}
	rateFetches.WithLabelValues("success").Inc()
	c.last = rates
	return rates
}

func (c *ReportCycle) reference() string {
	if c.Reference == "" {
		return DefaultReference
	}
	return c.Reference
}

// hasTraffic reports whether t has at least one non zero entry.
func hasTraffic(t Traffic) bool {
	for _, a := range t {
		if !a.IsZero() {
			return true
		}
	}
	return false
}
