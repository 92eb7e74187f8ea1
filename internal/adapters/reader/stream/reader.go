// Package stream adapts any line-oriented io.Reader into a CodeReader:
// stdin for the CLI, fixed inputs for demos and tests. One line is one
// decoded code.
package stream

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/bnema/shipscan/internal/ports"
)

type Reader struct {
	scanner   *bufio.Scanner
	closer    io.Closer
	lines     chan scanLine
	done      chan struct{}
	closeOnce sync.Once
}

type scanLine struct {
	text string
	err  error
}

var _ ports.CodeReader = (*Reader)(nil)

// New wraps src. When src is also an io.Closer, Close closes it.
func New(src io.Reader) *Reader {
	r := &Reader{
		scanner: bufio.NewScanner(src),
		lines:   make(chan scanLine),
		done:    make(chan struct{}),
	}
	if closer, ok := src.(io.Closer); ok {
		r.closer = closer
	}

	go r.pump()
	return r
}

// NewFromCodes returns a reader that replays a fixed sequence of codes.
func NewFromCodes(codes ...string) *Reader {
	return New(strings.NewReader(strings.Join(codes, "\n")))
}

func (r *Reader) pump() {
	defer close(r.lines)
	for r.scanner.Scan() {
		select {
		case r.lines <- scanLine{text: r.scanner.Text()}:
		case <-r.done:
			return
		}
	}
	if err := r.scanner.Err(); err != nil {
		select {
		case r.lines <- scanLine{err: err}:
		case <-r.done:
		}
	}
}

// Next returns the next decoded code. Blank lines are skipped; the end
// of the underlying stream yields io.EOF.
func (r *Reader) Next(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line, ok := <-r.lines:
			if !ok {
				return "", io.EOF
			}
			if line.err != nil {
				return "", line.err
			}
			text := strings.TrimSpace(line.text)
			if text == "" {
				continue
			}
			return text, nil
		}
	}
}

func (r *Reader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		if r.closer != nil {
			err = r.closer.Close()
		}
	})
	return err
}
