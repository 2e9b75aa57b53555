package sink

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// jsonlHeader opens a JSONL results file, identifying the run that produced
// the lines after it.
type jsonlHeader struct {
	Run     string `json:"run"`
	Started string `json:"started"`
}

// JSONLSink appends one JSON object per processed plan to a file, the same
// line-delimited layout the plan stream itself uses. Paths ending in .gz are
// gzip-compressed. The first line is a header object naming the run.
type JSONLSink struct {
	file    *os.File
	gz      *gzip.Writer
	enc     *json.Encoder
	written int
}

// NewJSONLSink creates (or truncates) the results file at path and writes
// the run header.
func NewJSONLSink(path, runID string) (*JSONLSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}
	s := &JSONLSink{file: file}
	var w io.Writer = file
	if strings.HasSuffix(path, ".gz") {
		s.gz = gzip.NewWriter(file)
		w = s.gz
	}
	s.enc = json.NewEncoder(w)
	header := jsonlHeader{Run: runID, Started: time.Now().UTC().Format(time.RFC3339)}
	if err := s.enc.Encode(header); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("writing results header: %w", err)
	}
	return s, nil
}

// Emit appends t as one JSON line.
func (s *JSONLSink) Emit(t PlanTally) error {
	if err := s.enc.Encode(t); err != nil {
		return fmt.Errorf("writing results line: %w", err)
	}
	s.written++
	return nil
}

// Written reports how many plan lines have been appended, excluding the
// header.
func (s *JSONLSink) Written() int { return s.written }

// Close flushes the compressor, if any, and closes the file.
func (s *JSONLSink) Close() error {
	var first error
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			first = err
		}
	}
	if err := s.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
