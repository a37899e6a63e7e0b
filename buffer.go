package paytracker

import "sync"

// PendingBuffer stages raw input lines between two report cycles.
//
// Append and Drain are mutually exclusive: a line appended while a drain is
// in progress is returned by that drain or by the next one, never lost nor
// duplicated.
type PendingBuffer struct {
	mu    sync.Mutex
	lines []string
}

// Append adds lines at the end of the buffer.
func (b *PendingBuffer) Append(lines ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, lines...)
	linesReceived.Add(float64(len(lines)))
	pendingLines.Set(float64(len(b.lines)))
}

// Drain removes and returns all buffered lines, in arrival order.
func (b *PendingBuffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := b.lines
	b.lines = nil
	pendingLines.Set(0)
	return lines
}

// Len returns the number of buffered lines.
func (b *PendingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
