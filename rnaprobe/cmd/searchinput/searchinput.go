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

// Package searchinput converts read containers into a single FASTA file
// for homology search, under a global record budget.
package searchinput

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// Separator joins the origin file stem and the ReadID of an entry.
const Separator = "_"

// DefaultSampleSize is the default global record budget.
const DefaultSampleSize = 10000

// Stats summarizes one build.
type Stats struct {
	Files     int  // files read, including partially read ones
	Skipped   int  // files that could not be opened or read
	Written   int  // entries written
	Exhausted bool // the budget was reached
}

// Stem returns the origin label of a file: its base name up to the first '.'.
func Stem(file string) string {
	base := filepath.Base(file)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// Build writes the records of files to outFile as FASTA entries named
// "{stem}_{ReadID}", followed by the original description.
//
// Files are processed in lexicographic order of their paths, and the build
// stops entirely once limit entries are written. A limit of 0 means no limit.
// Empty files are read as files without records.
// Files that can not be opened are skipped and returned as warnings; a read
// error in the middle of a file stops that file only.
func Build(files []string, limit int, outFile string) (Stats, []error, error) {
	var stats Stats
	var warnings []error

	if limit < 0 {
		return stats, nil, errors.Errorf("negative sample size: %d", limit)
	}

	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	outfh, err := xopen.Wopen(outFile)
	if err != nil {
		return stats, nil, errors.Wrap(err, outFile)
	}

	var record *fastx.Record
	var reader *fastx.Reader
	var name []byte
	var prefix string
	for _, file := range sorted {
		if limit > 0 && stats.Written >= limit {
			stats.Exhausted = true
			break
		}

		if fi, err := os.Stat(file); err == nil && fi.Size() == 0 {
			stats.Files++
			continue
		}

		reader, err = fastx.NewDefaultReader(file)
		if err != nil {
			stats.Skipped++
			warnings = append(warnings, errors.Wrap(err, file))
			continue
		}
		stats.Files++

		prefix = Stem(file) + Separator
		for {
			if limit > 0 && stats.Written >= limit {
				stats.Exhausted = true
				break
			}

			record, err = reader.Read()
			if err != nil {
				if err != io.EOF {
					warnings = append(warnings, errors.Wrap(err, file))
				}
				break
			}

			name = append(name[:0], prefix...)
			name = append(name, record.Name...)
			entry := &fastx.Record{
				ID:   name[:len(prefix)+len(record.ID)],
				Name: name,
				Seq:  &seq.Seq{Seq: record.Seq.Seq},
			}
			entry.FormatToWriter(outfh, 0)
			stats.Written++
		}
		reader.Close()
	}

	return stats, warnings, outfh.Close()
}
