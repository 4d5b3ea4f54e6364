// Copyright © 2026 The rnaprobe Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package stream provides buffered input and output streams for plain or
// gzip-compressed files and stdin/stdout ("-").
package stream

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// BufferSize is size of buffer
var BufferSize = 65536 //os.Getpagesize()

// ErrNotFound means the input file does not exist.
var ErrNotFound = errors.New("stream: file not found")

// Writer is a buffered output stream. Close flushes the buffer and closes the
// gzip writer and the underlying file in order.
type Writer struct {
	*bufio.Writer

	gw     io.WriteCloser
	w      *os.File
	closed bool
}

// Close flushes and closes the stream, it is safe to call it twice.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.Flush(); err != nil {
		return err
	}
	if w.gw != nil {
		if err := w.gw.Close(); err != nil {
			return err
		}
	}
	if w.w == os.Stdout {
		return nil
	}
	return w.w.Close()
}

// IsGzipName tells whether the file name has a ".gz" suffix.
func IsGzipName(file string) bool {
	return strings.HasSuffix(strings.ToLower(file), ".gz")
}

// Out creates the output file, and the parent directory if needed.
// Use level -1 for the default compression level.
func Out(file string, gzipped bool, level int) (*Writer, error) {
	var w *os.File
	if file == "-" {
		w = os.Stdout
	} else {
		dir := filepath.Dir(file)
		fi, err := os.Stat(dir)
		if err == nil && !fi.IsDir() {
			return nil, errors.Errorf("can not write file into a non-directory path: %s", dir)
		}
		if os.IsNotExist(err) {
			if err = os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrapf(err, "fail to create directory %s", dir)
			}
		}

		w, err = os.Create(file)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to write %s", file)
		}
	}

	if gzipped {
		gw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to write %s", file)
		}
		return &Writer{Writer: bufio.NewWriterSize(gw, BufferSize), gw: gw, w: w}, nil
	}
	return &Writer{Writer: bufio.NewWriterSize(w, BufferSize), w: w}, nil
}

// Reader is a buffered input stream with transparent gzip decompression.
type Reader struct {
	*bufio.Reader

	Gzipped bool

	gr io.Closer
	r  *os.File
}

// Close closes the stream.
func (r *Reader) Close() error {
	if r.gr != nil {
		r.gr.Close()
	}
	if r.r == os.Stdin {
		return nil
	}
	return r.r.Close()
}

// In opens a file for reading. Gzip compression is detected by the magic
// number, so empty files are opened as plain text.
// A missing file returns an error wrapping ErrNotFound.
func In(file string) (*Reader, error) {
	var err error
	var r *os.File
	if file == "-" {
		if !detectStdin() {
			return nil, errors.New("stdin not detected")
		}
		r = os.Stdin
	} else {
		r, err = os.Open(file)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(ErrNotFound, file)
			}
			return nil, errors.Wrapf(err, "fail to read %s", file)
		}
	}

	br := bufio.NewReaderSize(r, BufferSize)

	gzipped, err := isGzip(br)
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "fail to check is file (%s) gzipped", file)
	}
	if !gzipped {
		return &Reader{Reader: br, r: r}, nil
	}

	gr, err := gzip.NewReaderN(br, 65536, 8)
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "fail to create gzip reader for %s", file)
	}
	return &Reader{Reader: bufio.NewReaderSize(gr, BufferSize), Gzipped: true, gr: gr, r: r}, nil
}

// IsNotFound tells whether err is caused by a missing file.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// NonEmpty tells whether the file exists and is not empty.
func NonEmpty(file string) (bool, error) {
	fi, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.Size() > 0, nil
}

func isGzip(b *bufio.Reader) (bool, error) {
	return checkBytes(b, []byte{0x1f, 0x8b})
}

func checkBytes(b *bufio.Reader, buf []byte) (bool, error) {
	m, err := b.Peek(len(buf))
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	for i := range buf {
		if m[i] != buf[i] {
			return false, nil
		}
	}
	return true, nil
}

func detectStdin() bool {
	// http://stackoverflow.com/a/26567513
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
