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

// Package besthit parses tabular homology-search output (BLAST outfmt 6
// with qcovs and stitle) and keeps the best hit of each query.
package besthit

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NumFields is the number of columns of one hit line.
const NumFields = 14

// Header is the header row of matched-hits tables.
var Header = []string{
	"qseqid", "sseqid", "pident", "length", "mismatch", "gapopen",
	"qstart", "qend", "sstart", "send", "evalue", "bitscore", "qcovs", "stitle",
}

// ErrMalformed means a line does not hold a valid hit.
var ErrMalformed = errors.New("besthit: malformed hit line")

// Hit is one line of search output.
type Hit struct {
	QueryID      string
	SubjectID    string
	Pident       float64
	Length       int
	Mismatch     int
	GapOpen      int
	QStart       int
	QEnd         int
	SStart       int
	SEnd         int
	Evalue       float64
	BitScore     float64
	Qcov         float64
	SubjectTitle string

	// Fields are the columns as read, for writing the hit back unchanged.
	Fields []string
}

// Parse parses a tab-delimited hit line without the line ending.
// Extra columns are taken as part of the subject title.
func Parse(line string) (*Hit, error) {
	fields := strings.SplitN(line, "\t", NumFields)
	if len(fields) < NumFields {
		return nil, ErrMalformed
	}

	h := &Hit{
		QueryID:      fields[0],
		SubjectID:    fields[1],
		SubjectTitle: fields[13],
		Fields:       fields,
	}
	if h.QueryID == "" {
		return nil, ErrMalformed
	}

	var err error
	floats := []struct {
		v *float64
		s string
	}{
		{&h.Pident, fields[2]},
		{&h.Evalue, fields[10]},
		{&h.BitScore, fields[11]},
		{&h.Qcov, fields[12]},
	}
	for _, f := range floats {
		if *f.v, err = strconv.ParseFloat(strings.TrimSpace(f.s), 64); err != nil {
			return nil, ErrMalformed
		}
	}

	ints := []struct {
		v *int
		s string
	}{
		{&h.Length, fields[3]},
		{&h.Mismatch, fields[4]},
		{&h.GapOpen, fields[5]},
		{&h.QStart, fields[6]},
		{&h.QEnd, fields[7]},
		{&h.SStart, fields[8]},
		{&h.SEnd, fields[9]},
	}
	for _, f := range ints {
		if *f.v, err = strconv.Atoi(strings.TrimSpace(f.s)); err != nil {
			return nil, ErrMalformed
		}
	}

	return h, nil
}

// Better tells whether h should replace the retained hit old of the same
// query: a higher bit score, or an equal bit score with a lower e-value.
// Equal hits keep old, so the first seen wins.
func (h *Hit) Better(old *Hit) bool {
	if h.BitScore != old.BitScore {
		return h.BitScore > old.BitScore
	}
	return h.Evalue < old.Evalue
}

// Thresholds select candidate hits.
type Thresholds struct {
	MinPident float64 // minimum percent identity
	MinQcov   float64 // minimum query coverage, in percent
	MaxEvalue float64 // maximum e-value
}

// DefaultThresholds are the default filter values.
var DefaultThresholds = Thresholds{MinPident: 90, MinQcov: 70, MaxEvalue: 1e-5}

// Validate checks the ranges of thresholds.
func (t Thresholds) Validate() error {
	if t.MinPident < 0 || t.MinPident > 100 {
		return errors.Errorf("minimum percent identity should be in range of [0, 100]: %v", t.MinPident)
	}
	if t.MinQcov < 0 || t.MinQcov > 100 {
		return errors.Errorf("minimum query coverage should be in range of [0, 100]: %v", t.MinQcov)
	}
	if t.MaxEvalue < 0 {
		return errors.Errorf("maximum e-value should not be negative: %v", t.MaxEvalue)
	}
	return nil
}

// Pass tells whether a hit passes all thresholds.
func (t Thresholds) Pass(h *Hit) bool {
	return h.Pident >= t.MinPident && h.Qcov >= t.MinQcov && h.Evalue <= t.MaxEvalue
}
