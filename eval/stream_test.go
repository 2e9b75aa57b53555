package eval

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineSource_YieldsLinesInOrder(t *testing.T) {
	src := NewLineSource(strings.NewReader("one\ntwo\nthree\n"))
	var lines []string
	for {
		line, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestNewLineSource_NoTrailingNewlineStillYieldsLastLine(t *testing.T) {
	src := NewLineSource(strings.NewReader("only"))
	line, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "only", string(line))
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenPlanStream_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))

	ps, err := OpenPlanStream(path)
	require.NoError(t, err)
	defer func() { _ = ps.Close() }()

	line, err := ps.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", string(line))
}

func TestOpenPlanStream_GzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte("compressed line\nsecond\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	ps, err := OpenPlanStream(path)
	require.NoError(t, err)
	defer func() { _ = ps.Close() }()

	line, err := ps.Next()
	require.NoError(t, err)
	assert.Equal(t, "compressed line", string(line))
	line, err = ps.Next()
	require.NoError(t, err)
	assert.Equal(t, "second", string(line))
	_, err = ps.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenPlanStream_MissingFile(t *testing.T) {
	_, err := OpenPlanStream(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}
