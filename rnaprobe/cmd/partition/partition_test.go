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

package partition

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/assign"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
)

const reads = "@r1 desc\nACGT\n+\nIIII\n" +
	"@r2\nGGCC\n+\nJJJJ\n" +
	"@r3\nTTAA\n+\nKKKK\n"

type idSet map[string]struct{}

func (s idSet) Contains(id []byte) bool {
	_, ok := s[string(id)]
	return ok
}

func writeFile(t *testing.T, file string, data string) {
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, file string) string {
	r, err := stream.In(file)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "S1.fastq")
	writeFile(t, in, reads)

	a := assign.New("S1")
	a.Add("r1", "Assigned")
	a.Add("r2", "Unassigned_NoFeatures")
	a.Add("r3", "Unassigned_NoFeatures")

	out := Outputs{
		Assigned:   filepath.Join(dir, "out", "S1.assigned.fastq"),
		Unassigned: filepath.Join(dir, "out", "S1.unassigned.fastq.gz"),
	}
	sa, su, err := Split(in, a, out)
	if err != nil {
		t.Fatal(err)
	}
	if sa.Written != 1 || su.Written != 2 || sa.Records != 3 {
		t.Errorf("unexpected stats: %+v %+v", sa, su)
	}

	if got := readFile(t, out.Assigned); got != "@r1 desc\nACGT\n+\nIIII\n" {
		t.Errorf("unexpected assigned output:\n%s", got)
	}
	if got := readFile(t, out.Unassigned); got != "@r2\nGGCC\n+\nJJJJ\n@r3\nTTAA\n+\nKKKK\n" {
		t.Errorf("unexpected unassigned output:\n%s", got)
	}
}

func TestPartitionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fastq")
	out := filepath.Join(dir, "out.fastq")
	writeFile(t, in, reads)

	stats, err := Partition(in, out, idSet{"r1": {}, "r2": {}, "r3": {}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Written != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if got := readFile(t, out); got != reads {
		t.Errorf("round trip failed:\n%s", got)
	}
}

func TestPartitionLenient(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fastq")
	writeFile(t, in, reads+"@r4\nAC\n")

	tests := []struct {
		name string
		in   string
		keep IDSet
		want string
		ok   func(Stats) bool
	}{
		{"no ids", in, nil, "", func(s Stats) bool { return s.NoIDs }},
		{"missing input", filepath.Join(dir, "none.fastq"), idSet{"r1": {}}, "", func(s Stats) bool { return s.Missing }},
		{"truncated", in, idSet{"r3": {}, "r4": {}}, "@r3\nTTAA\n+\nKKKK\n", func(s Stats) bool { return s.Truncated && s.Records == 3 }},
	}
	for i, test := range tests {
		out := filepath.Join(dir, "out", test.name+".fastq")
		stats, err := Partition(test.in, out, test.keep)
		if err != nil {
			t.Fatalf("#%d %s: %s", i, test.name, err)
		}
		if !test.ok(stats) {
			t.Errorf("#%d %s: unexpected stats: %+v", i, test.name, stats)
		}
		if got := readFile(t, out); got != test.want {
			t.Errorf("#%d %s: unexpected output:\n%s", i, test.name, got)
		}
	}
}

func TestSplitWithoutAssignments(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fastq")
	writeFile(t, in, reads)
	out := Outputs{Assigned: filepath.Join(dir, "a.fastq"), Unassigned: filepath.Join(dir, "u.fastq")}
	if _, _, err := Split(in, nil, out); err != nil {
		t.Fatal(err)
	}
	for _, file := range []string{out.Assigned, out.Unassigned} {
		if got := readFile(t, file); got != "" {
			t.Errorf("%s should be empty", file)
		}
	}
}
