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

// Package assign classifies reads as assigned or unassigned to genomic
// features from the per-read tags written by the quantifier.
package assign

// ReadSet is a read-only set of ReadIDs.
type ReadSet interface {
	// Contains reports whether the ReadID is in the set.
	Contains(id []byte) bool
	// Len returns the size of the set.
	Len() int
}

// SampleAssignments holds the classification of all reads of one sample.
//
// Every read is stored once with its latest category, and the assigned and
// unassigned sets are views over that single table, so the two sets are
// always disjoint. A read tagged more than once ends up in the set implied
// by its last tag, and its count moves to the last category.
type SampleAssignments struct {
	SampleID string

	reads  map[string]Category
	counts [numCategories]int
}

// New creates an empty SampleAssignments.
func New(sampleID string) *SampleAssignments {
	return &SampleAssignments{
		SampleID: sampleID,
		reads:    make(map[string]Category, 1024),
	}
}

// Add classifies a read by its tag. Absent tags should be passed as "".
func (a *SampleAssignments) Add(id string, tag string) {
	c, _ := ParseCategory(tag)
	a.AddCategory(id, c)
}

// AddCategory records the category of a read, replacing a previous one.
func (a *SampleAssignments) AddCategory(id string, c Category) {
	if prev, ok := a.reads[id]; ok {
		a.counts[prev]--
	}
	a.reads[id] = c
	a.counts[c]++
}

// Category returns the category of a read.
func (a *SampleAssignments) Category(id string) (Category, bool) {
	c, ok := a.reads[id]
	return c, ok
}

// Count returns the number of reads in a category.
func (a *SampleAssignments) Count(c Category) int {
	return a.counts[c]
}

// Counts returns the number of reads of every category.
func (a *SampleAssignments) Counts() map[Category]int {
	m := make(map[Category]int, numCategories)
	for _, c := range Categories {
		m[c] = a.counts[c]
	}
	return m
}

// Total returns the number of distinct classified reads.
func (a *SampleAssignments) Total() int {
	return len(a.reads)
}

// Assigned returns the set of assigned reads.
func (a *SampleAssignments) Assigned() ReadSet {
	return view{a: a, assigned: true}
}

// Unassigned returns the set of unassigned reads.
func (a *SampleAssignments) Unassigned() ReadSet {
	return view{a: a, assigned: false}
}

type view struct {
	a        *SampleAssignments
	assigned bool
}

func (v view) Contains(id []byte) bool {
	c, ok := v.a.reads[string(id)]
	return ok && (c == Assigned) == v.assigned
}

func (v view) Len() int {
	if v.assigned {
		return v.a.counts[Assigned]
	}
	return len(v.a.reads) - v.a.counts[Assigned]
}
