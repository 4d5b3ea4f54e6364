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

// Package summary counts best hits per sample and subject.
package summary

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/besthit"
	"github.com/twotwotwo/sorts"
)

// Separator separates the sample id from the ReadID in a query id.
const Separator = '_'

// Unknown is the sample id of query ids without a separator.
const Unknown = "Unknown"

// Header is the header row of summary tables.
var Header = []string{"sample_id", "subject_title", "count"}

// SampleFromQuery returns the text before the first separator of a query id.
func SampleFromQuery(query string) string {
	if i := strings.IndexByte(query, Separator); i >= 0 {
		return query[:i]
	}
	return Unknown
}

// Row is the number of best hits of one sample to one subject title.
type Row struct {
	SampleID     string
	SubjectTitle string
	Count        int

	first int // order of the first hit of the group
}

type groupKey struct {
	sample string
	title  string
}

// Counter groups hits by sample and subject title.
type Counter struct {
	index map[groupKey]int
	rows  []*Row
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{index: make(map[groupKey]int, 128)}
}

// Add counts one hit.
func (c *Counter) Add(query string, title string) {
	key := groupKey{sample: SampleFromQuery(query), title: title}
	if i, ok := c.index[key]; ok {
		c.rows[i].Count++
		return
	}
	c.index[key] = len(c.rows)
	c.rows = append(c.rows, &Row{SampleID: key.sample, SubjectTitle: title, Count: 1, first: len(c.rows)})
}

// Rows returns the groups sorted by sample id, then descending count.
// Groups with the same count keep the order their first hit was added.
func (c *Counter) Rows() []*Row {
	rows := make([]*Row, len(c.rows))
	copy(rows, c.rows)
	sorts.Quicksort(Rows(rows))
	return rows
}

// Aggregate counts best hits and returns sorted rows.
func Aggregate(hits []*besthit.Hit) []*Row {
	c := NewCounter()
	for _, h := range hits {
		c.Add(h.QueryID, h.SubjectTitle)
	}
	return c.Rows()
}

// Rows implements sort.Interface with a total order.
type Rows []*Row

func (r Rows) Len() int      { return len(r) }
func (r Rows) Swap(i, j int) { r[i], r[j] = r[j], r[i] }
func (r Rows) Less(i, j int) bool {
	a, b := r[i], r[j]
	if a.SampleID != b.SampleID {
		return a.SampleID < b.SampleID
	}
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.first < b.first
}

// Write writes the header row and rows as tab-delimited text.
func Write(w *bufio.Writer, rows []*Row) error {
	if _, err := w.WriteString(strings.Join(Header, "\t") + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		w.WriteString(r.SampleID)
		w.WriteByte('\t')
		w.WriteString(r.SubjectTitle)
		w.WriteByte('\t')
		w.WriteString(strconv.Itoa(r.Count))
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}
