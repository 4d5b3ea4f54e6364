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

package besthit

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
	"github.com/shenwei356/breader"
)

// ChunkSize is the number of lines parsed by each thread.
var ChunkSize = 5000

// Table keeps one hit per query, in the order queries are first seen.
type Table struct {
	index map[string]int
	hits  []*Hit
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int, 1024)}
}

// Add folds a hit into the table and reports whether it was retained.
func (t *Table) Add(h *Hit) bool {
	i, ok := t.index[h.QueryID]
	if !ok {
		t.index[h.QueryID] = len(t.hits)
		t.hits = append(t.hits, h)
		return true
	}
	if h.Better(t.hits[i]) {
		t.hits[i] = h
		return true
	}
	return false
}

// Get returns the retained hit of a query.
func (t *Table) Get(query string) (*Hit, bool) {
	i, ok := t.index[query]
	if !ok {
		return nil, false
	}
	return t.hits[i], true
}

// Len returns the number of queries.
func (t *Table) Len() int { return len(t.hits) }

// Hits returns the retained hits in first-seen order of their queries.
func (t *Table) Hits() []*Hit { return t.hits }

// Stats summarizes one pass over a hit file.
type Stats struct {
	Lines     int // hit lines, excluding blank and comment lines
	Malformed int
	Passed    int // hits passing the thresholds
}

type parsed struct {
	hit *Hit
	err error
}

// readHits streams hit lines of a file to fn in file order. Lines are
// parsed by threads goroutines.
func readHits(file string, threads int, skipHeader bool, fn func(*Hit, error)) error {
	if file != "-" {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return errors.Wrap(stream.ErrNotFound, file)
		}
		ok, err := stream.NonEmpty(file)
		if err != nil {
			return errors.Wrap(err, file)
		}
		if !ok {
			return nil
		}
	}
	if threads < 1 {
		threads = 1
	}

	headerPrefix := Header[0] + "\t"
	parse := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}
		if skipHeader && strings.HasPrefix(line, headerPrefix) {
			return nil, false, nil
		}
		h, err := Parse(line)
		return parsed{hit: h, err: err}, true, nil
	}

	reader, err := breader.NewBufferedReader(file, threads, ChunkSize, parse)
	if err != nil {
		return errors.Wrap(err, file)
	}

	var p parsed
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return errors.Wrap(chunk.Err, file)
		}
		for _, data := range chunk.Data {
			p = data.(parsed)
			fn(p.hit, p.err)
		}
	}
	return nil
}

// Resolve streams a hit file and keeps the best passing hit of each query.
// Malformed lines are skipped and counted. A missing file returns an error
// wrapping stream.ErrNotFound, an empty file returns an empty table.
func Resolve(file string, th Thresholds, threads int) (*Table, Stats, error) {
	var stats Stats
	if err := th.Validate(); err != nil {
		return nil, stats, err
	}

	t := NewTable()
	err := readHits(file, threads, false, func(h *Hit, err error) {
		stats.Lines++
		if err != nil {
			stats.Malformed++
			return
		}
		if !th.Pass(h) {
			return
		}
		stats.Passed++
		t.Add(h)
	})
	if err != nil {
		return nil, stats, err
	}
	return t, stats, nil
}

// ReadMatched reads a matched-hits table written by Write, skipping its
// header row. Every row is kept.
func ReadMatched(file string, threads int) ([]*Hit, Stats, error) {
	var stats Stats
	hits := make([]*Hit, 0, 1024)
	err := readHits(file, threads, true, func(h *Hit, err error) {
		stats.Lines++
		if err != nil {
			stats.Malformed++
			return
		}
		stats.Passed++
		hits = append(hits, h)
	})
	if err != nil {
		return nil, stats, err
	}
	return hits, stats, nil
}

// Write writes the header row and then hits with their original columns.
func Write(w *bufio.Writer, hits []*Hit) error {
	if _, err := w.WriteString(strings.Join(Header, "\t") + "\n"); err != nil {
		return err
	}
	for _, h := range hits {
		if _, err := w.WriteString(strings.Join(h.Fields, "\t")); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}
