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

// Package fastq reads and writes 4-line read-container records.
//
// A record is a header line starting with '@', a sequence line, a separator
// line and a quality line. The reader never loads more than one record and
// tolerates a truncated last record, which is dropped.
package fastq

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
)

// Header markers of read containers and flat sequence files.
const (
	MarkFastq byte = '@'
	MarkFasta byte = '>'
)

// ErrTruncated means the last record of a file misses one or more lines.
var ErrTruncated = errors.New("fastq: truncated record")

// Record is one 4-line unit, lines are stored without line terminators.
type Record struct {
	Header []byte
	Seq    []byte
	Sep    []byte
	Qual   []byte
}

// ID returns the ReadID of the record.
func (r *Record) ID() []byte {
	return ParseID(r.Header)
}

// Desc returns the header text after the ReadID, possibly empty.
func (r *Record) Desc() []byte {
	h := trimMarker(r.Header)
	h = bytes.TrimLeft(h, " \t")
	i := bytes.IndexAny(h, " \t")
	if i < 0 {
		return nil
	}
	return bytes.TrimSpace(h[i:])
}

// Write writes the four lines of the record, each terminated with '\n'.
func (r *Record) Write(w *bufio.Writer) error {
	for _, line := range [4][]byte{r.Header, r.Seq, r.Sep, r.Qual} {
		w.Write(line)
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// ParseID extracts the ReadID from a header line: the leading marker
// character is stripped and the first whitespace-delimited token returned.
func ParseID(header []byte) []byte {
	h := bytes.TrimLeft(trimMarker(header), " \t")
	if i := bytes.IndexAny(h, " \t"); i >= 0 {
		return h[:i]
	}
	return h
}

func trimMarker(header []byte) []byte {
	if len(header) > 0 && (header[0] == MarkFastq || header[0] == MarkFasta) {
		return header[1:]
	}
	return header
}

// Reader reads records one at a time. The returned record and its slices
// are reused by the next call of Read.
type Reader struct {
	br  *bufio.Reader
	fh  io.Closer
	rec Record

	truncated bool
	malformed int
	n         int
}

// NewReader creates a Reader on a buffered reader.
func NewReader(br *bufio.Reader) *Reader {
	return &Reader{br: br}
}

// Open opens a plain or gzipped read container, "-" for stdin.
// A missing file returns an error for which stream.IsNotFound is true.
func Open(file string) (*Reader, error) {
	r, err := stream.In(file)
	if err != nil {
		return nil, err
	}
	return &Reader{br: r.Reader, fh: r}, nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.fh != nil {
		return r.fh.Close()
	}
	return nil
}

// Read returns the next record, or io.EOF at the end of the stream.
// Blocks whose header line does not start with '@' or carries no ReadID are
// skipped and counted by Malformed. A trailing block with less than 4 lines
// ends the stream and is reported by Truncated.
func (r *Reader) Read() (*Record, error) {
	for {
		var err error
		lines := [4]*[]byte{&r.rec.Header, &r.rec.Seq, &r.rec.Sep, &r.rec.Qual}
		var i int
		for i = 0; i < 4; i++ {
			*lines[i], err = readLine(r.br, (*lines[i])[:0])
			if err != nil {
				break
			}
		}
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			if i > 1 || (i == 1 && len(r.rec.Header) > 0) {
				r.truncated = true
			}
			return nil, io.EOF
		}

		if len(r.rec.Header) == 0 || r.rec.Header[0] != MarkFastq || len(r.rec.ID()) == 0 {
			r.malformed++
			continue
		}

		r.n++
		return &r.rec, nil
	}
}

// Records returns the number of complete records read.
func (r *Reader) Records() int { return r.n }

// Malformed returns the number of skipped blocks.
func (r *Reader) Malformed() int { return r.malformed }

// Truncated tells whether the stream ended inside a record.
func (r *Reader) Truncated() bool { return r.truncated }

// readLine appends one line without "\n" or "\r\n" to buf.
// io.EOF is only returned when no byte is left.
func readLine(br *bufio.Reader, buf []byte) ([]byte, error) {
	var line []byte
	var err error
	var read bool
	for {
		line, err = br.ReadSlice('\n')
		if len(line) > 0 {
			read = true
		}
		buf = append(buf, line...)
		if err == bufio.ErrBufferFull {
			continue
		}
		break
	}
	if err != nil && !(err == io.EOF && read) {
		return buf, err
	}

	n := len(buf)
	if n > 0 && buf[n-1] == '\n' {
		n--
		if n > 0 && buf[n-1] == '\r' {
			n--
		}
	}
	return buf[:n], nil
}
