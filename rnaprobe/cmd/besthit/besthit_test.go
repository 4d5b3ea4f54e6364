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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
)

func hitLine(query, subject string, pident float64, evalue, bitscore, qcov float64, title string) string {
	return fmt.Sprintf("%s\t%s\t%.3f\t100\t1\t0\t1\t100\t201\t300\t%g\t%g\t%g\t%s",
		query, subject, pident, evalue, bitscore, qcov, title)
}

func writeLines(t *testing.T, file string, lines ...string) {
	if err := os.WriteFile(file, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParse(t *testing.T) {
	h, err := Parse(hitLine("S1_r1", "NC_1", 99.5, 1e-20, 180.5, 95, "Escherichia coli K-12"))
	if err != nil {
		t.Fatal(err)
	}
	if h.QueryID != "S1_r1" || h.SubjectID != "NC_1" || h.Pident != 99.5 ||
		h.Evalue != 1e-20 || h.BitScore != 180.5 || h.Qcov != 95 ||
		h.SubjectTitle != "Escherichia coli K-12" || h.SEnd != 300 || len(h.Fields) != NumFields {
		t.Errorf("unexpected hit: %+v", h)
	}

	h, err = Parse(hitLine("q", "s", 99, 1e-5, 50, 90, "title\twith tab"))
	if err != nil {
		t.Fatal(err)
	}
	if h.SubjectTitle != "title\twith tab" {
		t.Errorf("unexpected subject title: %q", h.SubjectTitle)
	}

	bad := []string{
		"q\ts\t99\t100",
		strings.Replace(hitLine("q", "s", 99, 1e-5, 50, 90, "t"), "\t100\t", "\tNA\t", 1),
		hitLine("", "s", 99, 1e-5, 50, 90, "t"),
	}
	for i, line := range bad {
		if _, err = Parse(line); err != ErrMalformed {
			t.Errorf("#%d: expected ErrMalformed, got %v", i, err)
		}
	}
}

func TestResolveTieBreak(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hits.tsv")
	writeLines(t, file,
		hitLine("S1_r1", "a", 99, 1e-3, 50, 100, "orgA"),
		hitLine("S1_r1", "b", 99, 1e-10, 90, 100, "orgB"),
		hitLine("S1_r1", "c", 99, 1e-5, 90, 100, "orgC"),
	)

	table, stats, err := Resolve(file, Thresholds{MaxEvalue: 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 || stats.Passed != 3 {
		t.Fatalf("unexpected table size %d, stats: %+v", table.Len(), stats)
	}
	h, ok := table.Get("S1_r1")
	if !ok || h.SubjectID != "b" {
		t.Errorf("expected the second hit to be retained, got %+v", h)
	}
}

func TestResolveFirstSeenWins(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hits.tsv")
	writeLines(t, file,
		hitLine("q2", "x", 99, 1e-10, 90, 100, "orgX"),
		hitLine("q1", "a", 99, 1e-10, 90, 100, "orgA"),
		hitLine("q1", "b", 99, 1e-10, 90, 100, "orgB"),
		hitLine("q2", "y", 99, 1e-10, 95, 100, "orgY"),
	)

	table, _, err := Resolve(file, DefaultThresholds, 1)
	if err != nil {
		t.Fatal(err)
	}
	hits := table.Hits()
	if len(hits) != 2 {
		t.Fatalf("unexpected number of hits: %d", len(hits))
	}
	if hits[0].QueryID != "q2" || hits[0].SubjectID != "y" {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
	if hits[1].QueryID != "q1" || hits[1].SubjectID != "a" {
		t.Errorf("unexpected second hit: %+v", hits[1])
	}
}

func TestResolveFilters(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hits.tsv")
	writeLines(t, file,
		"# BLASTN 2.12.0+",
		"",
		hitLine("q1", "a", 85, 1e-10, 90, 100, "low identity"),
		hitLine("q2", "b", 99, 1e-10, 90, 50, "low coverage"),
		hitLine("q3", "c", 99, 1e-2, 90, 100, "high evalue"),
		"q4\tbroken",
		hitLine("q5", "e", 90, 1e-5, 90, 70, "on the boundary"),
	)

	table, stats, err := Resolve(file, DefaultThresholds, 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Lines != 5 || stats.Malformed != 1 || stats.Passed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if table.Len() != 1 || table.Hits()[0].QueryID != "q5" {
		t.Errorf("only q5 should pass the filters")
	}
}

func TestResolveNothingPasses(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hits.tsv")
	writeLines(t, file,
		hitLine("q1", "a", 99.9, 1e-10, 90, 100, "orgA"),
		hitLine("q2", "b", 98, 1e-10, 90, 100, "orgB"),
	)

	th := DefaultThresholds
	th.MinPident = 100
	table, _, err := Resolve(file, th, 1)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 0 {
		t.Errorf("no hit should pass")
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err = Write(w, table.Hits()); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if buf.String() != strings.Join(Header, "\t")+"\n" {
		t.Errorf("expected a header-only table, got:\n%s", buf.String())
	}
}

func TestResolveMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Resolve(filepath.Join(dir, "none.tsv"), DefaultThresholds, 1)
	if !stream.IsNotFound(err) {
		t.Errorf("expected a not-found error, got %v", err)
	}

	empty := filepath.Join(dir, "empty.tsv")
	if err = os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	table, _, err := Resolve(empty, DefaultThresholds, 1)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 0 {
		t.Errorf("empty input should give an empty table")
	}
}

func TestThresholdsValidate(t *testing.T) {
	bad := []Thresholds{
		{MinPident: 101},
		{MinQcov: -1},
		{MaxEvalue: -1},
	}
	for i, th := range bad {
		if th.Validate() == nil {
			t.Errorf("#%d: expected an error for %+v", i, th)
		}
	}
	if err := DefaultThresholds.Validate(); err != nil {
		t.Error(err)
	}
}

func TestWriteAndReadMatched(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "hits.tsv")
	lines := []string{
		hitLine("S1_r1", "a", 99, 1e-10, 90, 100, "orgA"),
		hitLine("S2_r1", "b", 99, 1e-10, 90, 100, "orgB"),
	}
	writeLines(t, in, lines...)
	table, _, err := Resolve(in, DefaultThresholds, 1)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "matched.tsv.gz")
	outfh, err := stream.Out(out, true, -1)
	if err != nil {
		t.Fatal(err)
	}
	if err = Write(outfh.Writer, table.Hits()); err != nil {
		t.Fatal(err)
	}
	if err = outfh.Close(); err != nil {
		t.Fatal(err)
	}

	hits, stats, err := ReadMatched(out, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || stats.Malformed != 0 {
		t.Fatalf("unexpected hits: %d, stats: %+v", len(hits), stats)
	}
	for i, h := range hits {
		if strings.Join(h.Fields, "\t") != lines[i] {
			t.Errorf("#%d: columns changed: %q", i, strings.Join(h.Fields, "\t"))
		}
	}
}
