// Package corpusio opens corpus files for reading and writing.
// Paths ending in .xz or .gz are transparently (de)compressed and "-"
// stands for stdin or stdout.
package corpusio

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/nerconv/core/errors"
	"github.com/FocuswithJustin/nerconv/core/ir"
)

// StdioPath is the path meaning stdin or stdout.
const StdioPath = "-"

// Stdin and Stdout back StdioPath. Tests may replace them.
var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
)

// Compression names the compression implied by path: "xz", "gzip" or "".
func Compression(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		return "xz"
	case ".gz":
		return "gzip"
	}
	return ""
}

// Reader wraps a file with automatic decompression handling.
type Reader struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens path for reading.
func Open(path string) (*Reader, error) {
	if path == StdioPath {
		return &Reader{Reader: Stdin}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	r := &Reader{Reader: f, file: f}
	switch Compression(path) {
	case "xz":
		xzr, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, errors.NewIO("read xz", path, err)
		}
		r.Reader = xzr
	case "gzip":
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("read gzip", path, err)
		}
		r.Reader = gzr
		r.decompressor = gzr
	}
	return r, nil
}

// Close closes the reader and any underlying decompressor.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// countingWriter counts bytes that reach the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Writer wraps a file with automatic compression handling.
type Writer struct {
	io.Writer
	file       *os.File
	buf        *bufio.Writer
	compressor io.WriteCloser
	sink       *countingWriter
}

// Create creates path for writing, making parent directories as needed.
func Create(path string) (*Writer, error) {
	var dst io.Writer = Stdout
	var f *os.File
	if path != StdioPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewIO("create directory for", path, err)
		}
		var err error
		f, err = os.Create(path)
		if err != nil {
			return nil, errors.NewIO("create", path, err)
		}
		dst = f
	}

	sink := &countingWriter{w: dst}
	w := &Writer{file: f, buf: bufio.NewWriter(sink), sink: sink}
	w.Writer = w.buf

	switch Compression(path) {
	case "xz":
		xzw, err := xz.NewWriter(w.buf)
		if err != nil {
			w.closeFile()
			return nil, errors.NewIO("write xz", path, err)
		}
		w.compressor = xzw
		w.Writer = xzw
	case "gzip":
		gzw := gzip.NewWriter(w.buf)
		w.compressor = gzw
		w.Writer = gzw
	}
	return w, nil
}

// Close flushes compressed and buffered data and closes the file.
func (w *Writer) Close() error {
	var errs []error
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := w.closeFile(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (w *Writer) closeFile() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Written returns the bytes written to the destination so far. It is final
// after Close.
func (w *Writer) Written() int64 {
	return w.sink.n
}

// ReadCorpus reads a JSON corpus from path.
func ReadCorpus(path string) (*ir.Corpus, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	c, err := ir.ReadJSON(r)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// WriteCorpus writes c to path as JSON and returns the bytes written.
func WriteCorpus(path string, c *ir.Corpus, format ir.NERFormat) (int64, error) {
	w, err := Create(path)
	if err != nil {
		return 0, err
	}
	if err := ir.WriteJSON(w, c, format); err != nil {
		w.Close()
		return w.Written(), errors.NewIO("write", path, err)
	}
	if err := w.Close(); err != nil {
		return w.Written(), errors.NewIO("close", path, err)
	}
	return w.Written(), nil
}
