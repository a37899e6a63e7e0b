package paytracker

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"
)

// Sentinel is the input line that ends a tracking session.
const Sentinel = "quit"

// DefaultIdle is how long the Ingestor waits after an empty read.
const DefaultIdle = time.Second

// Ingestor reads raw lines from an input stream and stages them in a
// PendingBuffer.
//
// It does not parse lines, the report cycle does.
type Ingestor struct {
	Reader io.Reader
	Buffer *PendingBuffer

	// Idle is the pause after an empty line or an end of input. Zero means
	// DefaultIdle.
	Idle time.Duration

	// Sentinel stops the ingestion, compared case-sensitively.
	// Empty means the package Sentinel.
	Sentinel string
}

// Run reads lines until the sentinel line, a read error, or ctx is done.
//
// It returns nil on the sentinel, ctx.Err() on cancellation, and the read
// error otherwise. End of input is not an error: the Ingestor waits and
// tries again, so that a terminal can keep typing after a Ctrl-D.
func (in *Ingestor) Run(ctx context.Context) error {
	idle := in.Idle
	if idle <= 0 {
		idle = DefaultIdle
	}
	sentinel := in.Sentinel
	if sentinel == "" {
		sentinel = Sentinel
	}

	r := bufio.NewReader(in.Reader)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// A last line without newline is still a line.
		line, err := readLine(r)
		if errors.Is(err, errLineTooLong) {
			log.Printf("dropping an input line longer than %d bytes", maxLineSize)
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			log.Printf("error reading input: %v", err)
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch line {
		case "":
			if err := sleep(ctx, idle); err != nil {
				return err
			}
		case sentinel:
			return nil
		default:
			in.Buffer.Append(line)
		}
	}
}

var errLineTooLong = errors.New("line too long")

// readLine reads r up to and including the next newline, like
// bufio.Reader.ReadString.
//
// A line longer than maxLineSize is consumed without being kept, and
// reported as errLineTooLong.
func readLine(r *bufio.Reader) (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong && len(line)+len(chunk) > maxLineSize {
			tooLong, line = true, nil
		}
		if !tooLong {
			line = append(line, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if tooLong && (err == nil || errors.Is(err, io.EOF)) {
			return "", errLineTooLong
		}
		return string(line), err
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
