package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a prompt is abandoned because the
// command was interrupted.
var ErrInputCancelled = errors.New("input canceled")

type lineResult struct {
	line string
	err  error
}

// LineReader reads answers line by line without blocking an interrupted
// command. A line that arrives after its prompt was abandoned is kept for
// the next read instead of being lost.
type LineReader struct {
	src     *bufio.Reader
	mu      sync.Mutex
	pending chan lineResult
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("cli: nil reader")
	}
	return &LineReader{src: bufio.NewReader(r)}
}

// ReadLine returns the next line with surrounding whitespace removed. A last
// line without a newline is returned as is; io.EOF is reported only once
// nothing is left.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	r.mu.Lock()
	if r.pending == nil {
		ch := make(chan lineResult, 1)
		r.pending = ch
		go func() {
			line, err := r.src.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	ch := r.pending
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-ch:
		r.mu.Lock()
		r.pending = nil
		r.mu.Unlock()

		if errors.Is(res.err, io.EOF) && res.line != "" {
			res.err = nil
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
