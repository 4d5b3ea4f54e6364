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
	"strconv"
)

// SummaryHeader returns the columns of the assignment summary table.
func SummaryHeader() []string {
	header := make([]string, 0, numCategories+1)
	header = append(header, "sample_id")
	for _, c := range Categories {
		header = append(header, c.String())
	}
	return header
}

// SummaryRow returns the cells of one sample in the summary table.
func (a *SampleAssignments) SummaryRow() []string {
	row := make([]string, 0, numCategories+1)
	row = append(row, a.SampleID)
	for _, c := range Categories {
		row = append(row, strconv.Itoa(a.counts[c]))
	}
	return row
}

// WriteSummary writes a tab-delimited table with one row per sample and one
// column per category.
func WriteSummary(w *bufio.Writer, samples []*SampleAssignments) error {
	writeRow(w, SummaryHeader())
	for _, a := range samples {
		writeRow(w, a.SummaryRow())
	}
	return w.Flush()
}

func writeRow(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte('\t')
		}
		w.WriteString(c)
	}
	w.WriteByte('\n')
}
