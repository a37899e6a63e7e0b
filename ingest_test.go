package paytracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func TestIngestor_StopsOnSentinel(t *testing.T) {
	var buf PendingBuffer
	in := &Ingestor{
		Reader: strings.NewReader("EUR 100\n\nbad line\r\nUSD -5\nquit\nCZK 1\n"),
		Buffer: &buf,
		Idle:   time.Millisecond,
	}
	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	got := buf.Drain()
	want := []string{"EUR 100", "bad line", "USD -5"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("buffered lines = %q, want %q", got, want)
	}
}

func TestIngestor_SentinelIsCaseSensitive(t *testing.T) {
	var buf PendingBuffer
	in := &Ingestor{
		Reader: strings.NewReader("QUIT\nQuit\nquit"),
		Buffer: &buf,
		Idle:   time.Millisecond,
	}
	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	if got := buf.Drain(); len(got) != 2 {
		t.Errorf("buffered lines = %q, want QUIT and Quit", got)
	}
}

func TestIngestor_WaitsAtEndOfInput(t *testing.T) {
	var buf PendingBuffer
	in := &Ingestor{
		Reader: strings.NewReader("EUR 1\n"),
		Buffer: &buf,
		Idle:   time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := in.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if got := buf.Len(); got != 1 {
		t.Errorf("buffered %d lines, want 1", got)
	}
}

func TestIngestor_ReadsLinesWrittenLater(t *testing.T) {
	r, w := io.Pipe()
	var buf PendingBuffer
	in := &Ingestor{Reader: r, Buffer: &buf, Idle: time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- in.Run(context.Background()) }()

	fmt.Fprintln(w, "EUR 1")
	fmt.Fprintln(w, "USD 2")
	fmt.Fprintln(w, "quit")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() unexpected error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop on the sentinel")
	}
	if got := buf.Len(); got != 2 {
		t.Errorf("buffered %d lines, want 2", got)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestIngestor_ReadError(t *testing.T) {
	boom := errors.New("boom")
	in := &Ingestor{Reader: failingReader{boom}, Buffer: new(PendingBuffer)}
	if err := in.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestIngestor_DropsOversizedLines(t *testing.T) {
	var buf PendingBuffer
	huge := strings.Repeat("A", maxLineSize+10)
	in := &Ingestor{
		Reader: strings.NewReader("EUR 1\n" + huge + "\nUSD 2\nquit\n"),
		Buffer: &buf,
		Idle:   time.Millisecond,
	}
	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run() unexpected error = %v", err)
	}
	want := []string{"EUR 1", "USD 2"}
	if got := buf.Drain(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("buffered lines = %q, want %q", got, want)
	}
}

func TestIngestor_DropsOversizedLastLine(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var buf PendingBuffer
	in := &Ingestor{
		Reader: strings.NewReader("EUR 1\n" + strings.Repeat("9", maxLineSize+1)),
		Buffer: &buf,
		Idle:   time.Millisecond,
	}
	if err := in.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if got := buf.Drain(); len(got) != 1 || got[0] != "EUR 1" {
		t.Errorf("buffered lines = %q, want [EUR 1]", got)
	}
}
