package paytracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTracker_SentinelFlush(t *testing.T) {
	out := new(syncBuffer)
	tr := NewTracker(Config{
		Input:       strings.NewReader("EUR 100\nCZK 200\nnot a payment\nquit\nUSD 1\n"),
		Output:      out,
		Rates:       StaticRates(testRates()),
		Interval:    time.Hour,
		Idle:        time.Millisecond,
		ExitMessage: "Exiting...",
	})
	if err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	want := "Exiting...\n---\nCZK 200.00 (USD 9.73)\nEUR 100.00 (USD 123.20)\n"
	if got := out.String(); got != want {
		t.Errorf("Run() printed %q, want %q", got, want)
	}
}

func TestTracker_LoadThenTrack(t *testing.T) {
	out := new(syncBuffer)
	tr := NewTracker(Config{
		Input:    strings.NewReader("usd 50\nquit\n"),
		Output:   out,
		Interval: time.Hour,
		Idle:     time.Millisecond,
	})
	tr.Load([]string{"USD 1000", "HKD 100", "USD -100", "XYZ 2000", "HKD 200"})
	if err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	want := "---\nHKD 300.00\nUSD 950.00\n"
	if got := out.String(); got != want {
		t.Errorf("Run() printed %q, want %q", got, want)
	}
}

func TestTracker_ReadErrorFlushes(t *testing.T) {
	boom := errors.New("stdin closed")
	out := new(syncBuffer)
	tr := NewTracker(Config{
		Input:    io.MultiReader(strings.NewReader("EUR 5\n"), failingReader{boom}),
		Output:   out,
		Interval: time.Hour,
	})
	err := tr.Run(context.Background())
	if !errors.Is(err, boom) || !errors.Is(err, ErrInput) || errors.Is(err, ErrReport) {
		t.Errorf("Run() error = %v, want %v wrapped in %v", err, boom, ErrInput)
	}
	if got, want := out.String(), "---\nEUR 5.00\n"; got != want {
		t.Errorf("Run() printed %q, want %q", got, want)
	}
}

func TestTracker_CancelFlushes(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	out := new(syncBuffer)
	tr := NewTracker(Config{Input: r, Output: out, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	fmt.Fprintln(w, "JPY 1000")
	// The pipe write returns once the ingestor has read the line; wait until
	// it is staged before cancelling.
	deadline := time.After(5 * time.Second)
	for tr.Buffer.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("line never staged")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() unexpected error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
	if got, want := out.String(), "---\nJPY 1000.00\n"; got != want {
		t.Errorf("Run() printed %q, want %q", got, want)
	}
}

func TestTracker_TicksWhileIngesting(t *testing.T) {
	r, w := io.Pipe()
	out := new(syncBuffer)
	tr := NewTracker(Config{Input: r, Output: out, Interval: 5 * time.Millisecond, Idle: time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	const n = 200
	for range n {
		fmt.Fprintln(w, "EUR 0.01")
	}
	fmt.Fprintln(w, "quit")
	if err := <-done; err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}

	// Whatever the tick interleaving, the final report holds every line.
	reports := strings.Split(strings.TrimSpace(out.String()), Separator+"\n")
	last := strings.TrimSpace(reports[len(reports)-1])
	if want := "EUR 2.00"; last != want {
		t.Errorf("final report = %q, want %q", last, want)
	}
	if got := tr.Aggregator.Snapshot(); !got["EUR"].Equal(A(2)) {
		t.Errorf("traffic EUR = %s, want exactly 2", got["EUR"].Exact())
	}
}

// slowReader cancels the session on its first read, then delivers line
// after delay, like a user typing while a signal arrives.
type slowReader struct {
	cancel context.CancelFunc
	delay  time.Duration
	line   string
	once   sync.Once
}

func (r *slowReader) Read(p []byte) (int, error) {
	n := 0
	r.once.Do(func() {
		r.cancel()
		time.Sleep(r.delay)
		n = copy(p, r.line)
	})
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func TestTracker_CancelKeepsLineInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := new(syncBuffer)
	tr := NewTracker(Config{
		Input:    &slowReader{cancel: cancel, delay: 50 * time.Millisecond, line: "EUR 7\n"},
		Output:   out,
		Interval: time.Hour,
		Grace:    5 * time.Second,
	})

	if err := tr.Run(ctx); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	if got, want := out.String(), "---\nEUR 7.00\n"; got != want {
		t.Errorf("Run() printed %q, want %q", got, want)
	}
	if n := tr.Buffer.Len(); n != 0 {
		t.Errorf("%d lines left in the buffer after the final report", n)
	}
}

func TestTracker_ReportErrorIsReported(t *testing.T) {
	boom := errors.New("stdout closed")
	tr := NewTracker(Config{
		Input:    strings.NewReader("EUR 1\nquit\n"),
		Output:   failingWriter{boom},
		Interval: time.Hour,
	})
	err := tr.Run(context.Background())
	if !errors.Is(err, ErrReport) || !errors.Is(err, boom) || errors.Is(err, ErrInput) {
		t.Errorf("Run() error = %v, want %v wrapped in %v", err, boom, ErrReport)
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }
