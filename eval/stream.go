package eval

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes bounds a single plan record line. Districting objects
// enumerate every unit, so lines run far past bufio's default token size.
const maxLineBytes = 64 * 1024 * 1024

// LineSource yields raw stream lines in order. Next returns io.EOF when the
// source is exhausted. The returned slice is only valid until the following
// call to Next.
type LineSource interface {
	Next() ([]byte, error)
}

type scannerSource struct {
	scanner *bufio.Scanner
}

// NewLineSource wraps r in a line-at-a-time source.
func NewLineSource(r io.Reader) LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), maxLineBytes)
	return &scannerSource{scanner: sc}
}

func (s *scannerSource) Next() ([]byte, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.scanner.Bytes(), nil
}

// PlanStream is an open plan source backed by a file. Close releases the
// file and, for compressed sources, the decompressor.
type PlanStream struct {
	LineSource
	closers []io.Closer
}

// Close closes the stream's underlying readers.
func (ps *PlanStream) Close() error {
	var first error
	for i := len(ps.closers) - 1; i >= 0; i-- {
		if err := ps.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenPlanStream opens the plan stream at path. Files ending in .gz are
// transparently decompressed.
func OpenPlanStream(path string) (*PlanStream, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan stream: %w", err)
	}
	var r io.Reader = file
	closers := []io.Closer{file}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("opening compressed plan stream: %w", err)
		}
		r = gz
		closers = append(closers, gz)
	}
	return &PlanStream{LineSource: NewLineSource(r), closers: closers}, nil
}
