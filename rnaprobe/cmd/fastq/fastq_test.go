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

package fastq

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gzip "github.com/klauspost/pgzip"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		header string
		id     string
	}{
		{"@r1", "r1"},
		{"@r1 1:N:0:ACGT", "r1"},
		{"@r1\tdesc", "r1"},
		{">S1_r2 x", "S1_r2"},
		{"r3 no-marker", "r3"},
		{"@", ""},
	}
	for _, test := range tests {
		if id := string(ParseID([]byte(test.header))); id != test.id {
			t.Errorf("ParseID(%q) = %q, expected %q", test.header, id, test.id)
		}
	}
}

func TestRecordDesc(t *testing.T) {
	r := &Record{Header: []byte("@r1  1:N:0 extra ")}
	if d := string(r.Desc()); d != "1:N:0 extra" {
		t.Errorf("unexpected desc: %q", d)
	}
	r = &Record{Header: []byte("@r1")}
	if d := r.Desc(); d != nil {
		t.Errorf("unexpected desc: %q", d)
	}
}

const data = "@r1 a\nACGT\n+\nIIII\n@r2\nGG\n+r2\nII\n@r3\nT\n+\nI\n"

func readAll(t *testing.T, r *Reader) []string {
	var ids []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, string(rec.ID()))
	}
	return ids
}

func TestReaderRoundTrip(t *testing.T) {
	r := NewReader(bufio.NewReader(strings.NewReader(data)))
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if err = rec.Write(w); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	if buf.String() != data {
		t.Errorf("round trip failed:\n%s", buf.String())
	}
	if r.Records() != 3 || r.Truncated() || r.Malformed() != 0 {
		t.Errorf("unexpected stats: %d %v %d", r.Records(), r.Truncated(), r.Malformed())
	}
}

func TestReaderTruncatedAndCRLF(t *testing.T) {
	tests := []struct {
		data      string
		ids       []string
		truncated bool
	}{
		{"@r1\nAC\n+\nII\n@r2\nAC\n+\n", []string{"r1"}, true},
		{"@r1\r\nAC\r\n+\r\nII\r\n", []string{"r1"}, false},
		{"@r1\nAC\n+\nII", []string{"r1"}, false},
		{"@r1\nAC\n+\nII\n\n", []string{"r1"}, false},
		{"", nil, false},
	}
	for i, test := range tests {
		r := NewReader(bufio.NewReader(strings.NewReader(test.data)))
		ids := readAll(t, r)
		if strings.Join(ids, ",") != strings.Join(test.ids, ",") {
			t.Errorf("#%d: ids %v, expected %v", i, ids, test.ids)
		}
		if r.Truncated() != test.truncated {
			t.Errorf("#%d: truncated = %v", i, r.Truncated())
		}
	}
}

func TestReaderMalformed(t *testing.T) {
	r := NewReader(bufio.NewReader(strings.NewReader("junk\nAC\n+\nII\n@r2\nAC\n+\nII\n")))
	ids := readAll(t, r)
	if len(ids) != 1 || ids[0] != "r2" || r.Malformed() != 1 {
		t.Errorf("unexpected result: %v, malformed: %d", ids, r.Malformed())
	}
}

func TestReaderStrayLine(t *testing.T) {
	data := "@r1\nAC\n+\nII\nstray\n@r2\nGG\n+\nII\n@r3\nTT\n+\nII\n"
	r := NewReader(bufio.NewReader(strings.NewReader(data)))
	ids := readAll(t, r)
	if len(ids) != 1 || ids[0] != "r1" {
		t.Errorf("records after a stray line should be skipped, got %v", ids)
	}
	if r.Malformed() != 2 || !r.Truncated() {
		t.Errorf("unexpected stats: malformed %d, truncated %v", r.Malformed(), r.Truncated())
	}
}

func TestOpenGzip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "reads.fastq.gz")
	fh, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(fh)
	gw.Write([]byte(data))
	gw.Close()
	fh.Close()

	r, err := Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if ids := readAll(t, r); strings.Join(ids, ",") != "r1,r2,r3" {
		t.Errorf("unexpected ids: %v", ids)
	}
}
