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

package assign

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		tag string
		c   Category
		ok  bool
	}{
		{"Assigned", Assigned, true},
		{"Unassigned_Unmapped", UnassignedUnmapped, true},
		{"Unassigned_NoFeatures", UnassignedNoFeatures, true},
		{"Unassigned_MappingQuality", UnassignedMappingQuality, true},
		{"Unassigned_Ambiguous", UnassignedAmbiguous, true},
		{"Unassigned_Ambiguity", UnassignedAmbiguous, true},
		{"Unassigned_MultiMapping", Other, false},
		{"", Other, false},
	}
	for _, test := range tests {
		c, ok := ParseCategory(test.tag)
		if c != test.c || ok != test.ok {
			t.Errorf("ParseCategory(%q) = %s, %v", test.tag, c, ok)
		}
	}
}

func checkDisjoint(t *testing.T, a *SampleAssignments, ids ...string) {
	for _, id := range ids {
		inA := a.Assigned().Contains([]byte(id))
		inU := a.Unassigned().Contains([]byte(id))
		if inA && inU {
			t.Errorf("%s in both sets", id)
		}
	}
	var sum int
	for _, n := range a.Counts() {
		sum += n
	}
	if sum != a.Assigned().Len()+a.Unassigned().Len() || sum != a.Total() {
		t.Errorf("counts (%d) do not match set sizes (%d + %d)", sum, a.Assigned().Len(), a.Unassigned().Len())
	}
}

func TestSampleAssignments(t *testing.T) {
	a := New("S1")
	a.Add("r1", "Assigned")
	a.Add("r2", "Unassigned_NoFeatures")
	a.Add("r3", "Unassigned_NoFeatures")
	a.Add("r4", "Unassigned_Chimera")
	a.Add("r5", "")

	if !a.Assigned().Contains([]byte("r1")) || a.Assigned().Len() != 1 {
		t.Errorf("r1 should be the only assigned read")
	}
	for _, id := range []string{"r2", "r3", "r4", "r5"} {
		if !a.Unassigned().Contains([]byte(id)) {
			t.Errorf("%s should be unassigned", id)
		}
	}
	if a.Count(UnassignedNoFeatures) != 2 || a.Count(Other) != 2 || a.Count(Assigned) != 1 {
		t.Errorf("unexpected counts: %v", a.Counts())
	}
	checkDisjoint(t, a, "r1", "r2", "r3", "r4", "r5")
}

func TestLastWriteWins(t *testing.T) {
	a := New("S1")
	a.Add("r1", "Unassigned_Unmapped")
	a.Add("r1", "Assigned")
	a.Add("r2", "Assigned")
	a.Add("r2", "Unassigned_Ambiguity")

	if !a.Assigned().Contains([]byte("r1")) || a.Unassigned().Contains([]byte("r1")) {
		t.Errorf("r1 should have moved to the assigned set")
	}
	if a.Assigned().Contains([]byte("r2")) || !a.Unassigned().Contains([]byte("r2")) {
		t.Errorf("r2 should have moved to the unassigned set")
	}
	if a.Count(UnassignedUnmapped) != 0 || a.Count(Assigned) != 1 || a.Count(UnassignedAmbiguous) != 1 {
		t.Errorf("unexpected counts: %v", a.Counts())
	}
	checkDisjoint(t, a, "r1", "r2")
}

func TestReadCore(t *testing.T) {
	file := filepath.Join(t.TempDir(), "S1.featureCounts")
	data := "r1\tAssigned\t1\tGENE1\n" +
		"r2\tUnassigned_NoFeatures\t0\tNA\n" +
		"\n" +
		"r3\tUnassigned_NoFeatures\t0\tNA\n" +
		"r4\tUnassigned_MappingQuality\t0\tNA\n" +
		"r5\n"
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := Read(file, FormatFromName(file), "S1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if a.Total() != 5 || a.Count(Assigned) != 1 || a.Count(UnassignedNoFeatures) != 2 ||
		a.Count(UnassignedMappingQuality) != 1 || a.Count(Other) != 1 {
		t.Errorf("unexpected counts: %v", a.Counts())
	}
	checkDisjoint(t, a, "r1", "r2", "r3", "r4", "r5")
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "none.txt"), FormatCore, "S1", 1)
	if !stream.IsNotFound(err) {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

func TestReadEmpty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	a, err := Read(file, FormatCore, "S1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if a.Total() != 0 {
		t.Errorf("expected no reads, got %d", a.Total())
	}
}

func TestReadSAM(t *testing.T) {
	file := filepath.Join(t.TempDir(), "S1.sam")
	data := "@HD\tVN:1.6\tSO:unsorted\n" +
		"@SQ\tSN:chr1\tLN:1000\n" +
		"r1\t0\tchr1\t10\t60\t4M\t*\t0\t0\tACGT\tIIII\tXS:Z:Assigned\n" +
		"r2\t0\tchr1\t20\t60\t4M\t*\t0\t0\tACGT\tIIII\tXS:Z:Unassigned_NoFeatures\n" +
		"r3\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\tIIII\n"
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	format, err := ParseFormat("", file)
	if err != nil || format != FormatSAM {
		t.Fatalf("unexpected format: %s, %v", format, err)
	}
	a, err := Read(file, format, "S1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Assigned().Contains([]byte("r1")) {
		t.Errorf("r1 should be assigned")
	}
	if c, _ := a.Category("r2"); c != UnassignedNoFeatures {
		t.Errorf("r2: unexpected category %s", c)
	}
	if c, _ := a.Category("r3"); c != Other {
		t.Errorf("r3: unexpected category %s", c)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("vcf", "x"); err == nil {
		t.Errorf("invalid format should be rejected")
	}
	for file, f := range map[string]Format{"a.bam": FormatBAM, "a.sam.gz": FormatSAM, "a.txt": FormatCore} {
		if g := FormatFromName(file); g != f {
			t.Errorf("FormatFromName(%s) = %s", file, g)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	a := New("S1")
	a.Add("r1", "Assigned")
	a.Add("r2", "Unassigned_Unmapped")
	b := New("S2")

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := WriteSummary(w, []*SampleAssignments{a, b}); err != nil {
		t.Fatal(err)
	}
	expected := "sample_id\tAssigned\tUnassigned_Unmapped\tUnassigned_NoFeatures\tUnassigned_MappingQuality\tUnassigned_Ambiguous\tUnassigned_Other\n" +
		"S1\t1\t1\t0\t0\t0\t0\n" +
		"S2\t0\t0\t0\t0\t0\t0\n"
	if buf.String() != expected {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}
