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

package manifest

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// Sample sheet columns.
const (
	ColSampleID    = "sample_id"
	ColCondition   = "condition"
	ColFastq1      = "fastq1"
	ColFastq2      = "fastq2"
	ColAssignments = "assignments"
	ColFormat      = "format"
)

// ReadSampleSheet reads a tab-delimited sample sheet with a header row.
// Columns sample_id, condition and fastq1 are required, fastq2, assignments
// and format are optional. Relative paths are relative to the directory of
// the sample sheet.
func ReadSampleSheet(file string) (*Manifest, error) {
	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			return nil, false, nil
		}
		return strings.Split(line, "\t"), true, nil
	}

	reader, err := breader.NewBufferedReader(file, 1, 100, fn)
	if err != nil {
		return nil, errors.Wrap(err, "fail to read sample sheet")
	}

	m := &Manifest{}
	var cols map[string]int
	var items []string
	var lineNum int
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, file)
		}
		for _, data := range chunk.Data {
			items = data.([]string)
			lineNum++

			if cols == nil {
				if cols, err = parseSheetHeader(items); err != nil {
					return nil, errors.Wrap(err, file)
				}
				continue
			}

			get := func(col string) string {
				i, ok := cols[col]
				if !ok || i >= len(items) {
					return ""
				}
				return strings.TrimSpace(items[i])
			}
			s := Sample{
				ID:          get(ColSampleID),
				Condition:   get(ColCondition),
				Assignments: get(ColAssignments),
				Format:      get(ColFormat),
				Reads:       Reads{Mate1: get(ColFastq1), Mate2: get(ColFastq2)},
			}
			if s.ID == "" {
				return nil, errors.Errorf("%s: empty sample id in row %d", file, lineNum)
			}
			m.Samples = append(m.Samples, s)
		}
	}
	if cols == nil {
		return nil, errors.Errorf("%s: no header row", file)
	}

	if err = m.resolve(filepath.Dir(file)); err != nil {
		return nil, errors.Wrap(err, file)
	}
	if err = m.Validate(); err != nil {
		return nil, errors.Wrap(err, file)
	}
	return m, nil
}

func parseSheetHeader(items []string) (map[string]int, error) {
	cols := make(map[string]int, len(items))
	for i, item := range items {
		cols[strings.ToLower(strings.TrimSpace(item))] = i
	}
	for _, col := range []string{ColSampleID, ColCondition, ColFastq1} {
		if _, ok := cols[col]; !ok {
			return nil, errors.Errorf("column %s missing in header row", col)
		}
	}
	return cols, nil
}
