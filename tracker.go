package paytracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// DefaultGrace is how long Run waits, once cancelled, for a line already read
// from the input to be staged.
const DefaultGrace = 500 * time.Millisecond

var (
	// ErrInput marks a failure of the payment input. The session still ends
	// with a final report, like on the sentinel.
	ErrInput = errors.New("reading payments")
	// ErrReport marks a failure to print the final report.
	ErrReport = errors.New("printing final report")
)

// Config holds the settings of a Tracker.
type Config struct {
	Input  io.Reader // payment lines, one per line
	Output io.Writer // reports

	Rates     RateGateway // nil disables conversions
	Reference string      // empty means DefaultReference

	Interval        time.Duration // see ReportCycle
	Immediate       bool
	FetchTimeout    time.Duration
	ReuseStaleRates bool
	Idle            time.Duration // see Ingestor
	Grace           time.Duration // zero means DefaultGrace

	// ExitMessage, if not empty, is printed on Output before the final
	// report.
	ExitMessage string
}

// Tracker wires an Aggregator, a PendingBuffer, an Ingestor and a
// ReportCycle for a single tracking session.
type Tracker struct {
	Aggregator *Aggregator
	Buffer     *PendingBuffer
	Ingestor   *Ingestor
	Cycle      *ReportCycle

	grace time.Duration
}

// NewTracker returns a Tracker with empty traffic.
func NewTracker(cfg Config) *Tracker {
	agg := NewAggregator()
	buf := new(PendingBuffer)
	return &Tracker{
		Aggregator: agg,
		Buffer:     buf,
		Ingestor: &Ingestor{
			Reader: cfg.Input,
			Buffer: buf,
			Idle:   cfg.Idle,
		},
		Cycle: &ReportCycle{
			Aggregator:      agg,
			Buffer:          buf,
			Rates:           cfg.Rates,
			Reference:       cfg.Reference,
			Out:             cfg.Output,
			Interval:        cfg.Interval,
			Immediate:       cfg.Immediate,
			FetchTimeout:    cfg.FetchTimeout,
			ReuseStaleRates: cfg.ReuseStaleRates,
			ExitMessage:     cfg.ExitMessage,
		},
		grace: cfg.Grace,
	}
}

// Load merges initial payment lines, typically read from a file, before the
// session starts.
func (t *Tracker) Load(lines []string) Traffic {
	return t.Aggregator.MergeAndReset(lines)
}

// Run tracks payments until the input sends the sentinel line, fails, or ctx
// is done. In every case it flushes a final report before returning.
//
// It returns nil on the sentinel or on ctx cancellation. Input failures are
// wrapped in ErrInput, final report failures in ErrReport.
//
// On cancellation, a line being read is still reported if it arrives within
// the grace period. After that a read blocked on the input cannot be
// interrupted, its goroutine is abandoned.
func (t *Tracker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cycleDone := make(chan struct{})
	go func() {
		defer close(cycleDone)
		t.Cycle.Run(ctx)
	}()

	ingestDone := make(chan error, 1)
	go func() { ingestDone <- t.Ingestor.Run(ctx) }()

	var err error
	select {
	case err = <-ingestDone:
	case <-ctx.Done():
		// The ingestor stages a line it has read before checking ctx.
		grace := time.NewTimer(t.gracePeriod())
		select {
		case err = <-ingestDone:
		case <-grace.C:
		}
		grace.Stop()
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInput, err)
	}

	if ferr := t.Cycle.Flush(ctx); ferr != nil {
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrReport, ferr))
	}
	cancel()
	<-cycleDone
	return err
}

func (t *Tracker) gracePeriod() time.Duration {
	if t.grace <= 0 {
		return DefaultGrace
	}
	return t.grace
}
