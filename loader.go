package paytracker

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single line of a payment file.
const maxLineSize = 1 << 20

// LoadFile reads all lines of a payment file.
//
// Lines are returned raw, validation happens when they are merged.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return lines, nil
}

// ReadLines reads r until EOF and returns its lines without line endings.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
