// Package archive reads and writes compressed assignment archives. The
// format fixes a universe of unit identifiers and imposes lexicographic
// order on it; each archived assignment is then just the district values in
// that order, joined by commas. Assignments are batched into windows, each
// window is deflated as one zlib chunk, and chunks are separated by a "()"
// marker. Units an assignment does not mention are recorded as "-1".
package archive

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	districtSeparator   = ","
	assignmentSeparator = "*"
	chunkSeparator      = "()"
	readChunkSize       = 16384
)

// DefaultWindow is the number of assignments batched into one chunk.
const DefaultWindow = 10

// Unassigned is the district value recorded for units an assignment does
// not cover.
const Unassigned = "-1"

// Writer compresses assignments against a fixed identifier universe.
// Close must be called to flush the final partial chunk.
type Writer struct {
	w           io.Writer
	identifiers []string
	positions   map[string]int
	cache       [][]byte
	window      int
	chunks      int
}

// NewWriter archives assignments over the given identifiers to w. A window
// of zero or less falls back to DefaultWindow.
func NewWriter(w io.Writer, identifiers []string, window int) *Writer {
	if window <= 0 {
		window = DefaultWindow
	}
	sorted := make([]string, len(identifiers))
	copy(sorted, identifiers)
	sort.Strings(sorted)
	positions := make(map[string]int, len(sorted))
	for i, id := range sorted {
		positions[id] = i
	}
	return &Writer{
		w:           w,
		identifiers: sorted,
		positions:   positions,
		window:      window,
	}
}

// Append archives one assignment. Empty assignments and assignments whose
// keys stray outside the identifier universe are skipped with a warning,
// never failed; an archive's rows must all match the same universe.
func (w *Writer) Append(assignment map[string]string) error {
	if len(assignment) == 0 {
		logrus.Warnf("empty assignment, skipping")
		return nil
	}
	districts := make([]string, len(w.identifiers))
	for i := range districts {
		districts[i] = Unassigned
	}
	for id, district := range assignment {
		pos, ok := w.positions[id]
		if !ok {
			logrus.Warnf("assignment key %q outside the identifier universe, skipping assignment", id)
			return nil
		}
		districts[pos] = district
	}
	w.cache = append(w.cache, []byte(strings.Join(districts, districtSeparator)))
	if len(w.cache) >= w.window {
		return w.flush()
	}
	return nil
}

// flush deflates the cached window into one chunk. The chunk separator goes
// before every chunk except the first, so a run whose assignment count lands
// exactly on a window boundary never produces a bogus empty chunk.
func (w *Writer) flush() error {
	if len(w.cache) == 0 {
		return nil
	}
	if w.chunks > 0 {
		if _, err := io.WriteString(w.w, chunkSeparator); err != nil {
			return fmt.Errorf("writing chunk separator: %w", err)
		}
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(bytes.Join(w.cache, []byte(assignmentSeparator))); err != nil {
		return fmt.Errorf("deflating chunk: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing chunk: %w", err)
	}
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing chunk: %w", err)
	}
	w.chunks++
	w.cache = w.cache[:0]
	return nil
}

// Close flushes the final partial chunk. It does not close the underlying
// writer.
func (w *Writer) Close() error { return w.flush() }

// Reader streams assignments back out of an archive written over the same
// identifier universe.
type Reader struct {
	r           io.Reader
	identifiers []string
	buf         []byte
	pending     []map[string]string
	exhausted   bool
}

// NewReader reads the archive in r, matching rows to the given identifiers.
func NewReader(r io.Reader, identifiers []string) *Reader {
	sorted := make([]string, len(identifiers))
	copy(sorted, identifiers)
	sort.Strings(sorted)
	return &Reader{r: r, identifiers: sorted}
}

// Next returns the next archived assignment, with identifiers in
// lexicographic order mapped to their recorded district values. It returns
// io.EOF once the archive is exhausted.
func (r *Reader) Next() (map[string]string, error) {
	for len(r.pending) == 0 {
		chunk, err := r.nextChunk()
		if err != nil {
			return nil, err
		}
		if err := r.inflate(chunk); err != nil {
			return nil, err
		}
	}
	assignment := r.pending[0]
	r.pending = r.pending[1:]
	return assignment, nil
}

// nextChunk scans the stream up to the next chunk separator, reading in
// fixed-size steps so the whole archive never sits in memory at once.
func (r *Reader) nextChunk() ([]byte, error) {
	for {
		if idx := bytes.Index(r.buf, []byte(chunkSeparator)); idx >= 0 {
			chunk := r.buf[:idx]
			r.buf = r.buf[idx+len(chunkSeparator):]
			if len(chunk) == 0 {
				continue
			}
			return chunk, nil
		}
		if r.exhausted {
			if len(r.buf) == 0 {
				return nil, io.EOF
			}
			chunk := r.buf
			r.buf = nil
			return chunk, nil
		}
		step := make([]byte, readChunkSize)
		n, err := r.r.Read(step)
		r.buf = append(r.buf, step[:n]...)
		if err == io.EOF {
			r.exhausted = true
		} else if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
	}
}

// inflate decompresses one chunk into pending assignments.
func (r *Reader) inflate(chunk []byte) error {
	zr, err := zlib.NewReader(bytes.NewReader(chunk))
	if err != nil {
		return fmt.Errorf("opening chunk: %w", err)
	}
	defer func() { _ = zr.Close() }()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("inflating chunk: %w", err)
	}
	// A writer that deflates its empty cache on teardown leaves a trailing
	// chunk inflating to nothing; it carries no assignments.
	if len(raw) == 0 {
		return nil
	}
	for _, row := range bytes.Split(raw, []byte(assignmentSeparator)) {
		districts := strings.Split(string(row), districtSeparator)
		if len(districts) != len(r.identifiers) {
			return fmt.Errorf("assignment has %d districts, expected %d", len(districts), len(r.identifiers))
		}
		assignment := make(map[string]string, len(r.identifiers))
		for i, id := range r.identifiers {
			assignment[id] = districts[i]
		}
		r.pending = append(r.pending, assignment)
	}
	return nil
}
