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

// Package partition streams a read container and keeps the records whose
// ReadID is in a given set.
package partition

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/assign"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/fastq"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
)

// IDSet selects records by ReadID.
type IDSet interface {
	Contains(id []byte) bool
}

// Stats summarizes one partition pass.
type Stats struct {
	Records   int  // complete records read
	Written   int  // records written
	Malformed int  // skipped blocks
	Truncated bool // input ended inside a record
	Missing   bool // input file does not exist
	NoIDs     bool // no id set given
}

// CompressionLevel is the gzip level of ".gz" outputs.
var CompressionLevel = -1

// Partition writes the records of the input file whose ReadID is in keep to
// the output file, keeping the 4-line structure and the input order.
//
// The output file is always created: when keep is nil or the input file does
// not exist, it is left empty and the case is reported in Stats instead of an
// error. A truncated last record is dropped.
func Partition(inFile string, outFile string, keep IDSet) (Stats, error) {
	var stats Stats

	outfh, err := stream.Out(outFile, stream.IsGzipName(outFile), CompressionLevel)
	if err != nil {
		return stats, err
	}
	defer outfh.Close()

	if keep == nil {
		stats.NoIDs = true
		return stats, outfh.Close()
	}

	reader, err := fastq.Open(inFile)
	if err != nil {
		if stream.IsNotFound(err) {
			stats.Missing = true
			return stats, outfh.Close()
		}
		return stats, err
	}
	defer reader.Close()

	var rec *fastq.Record
	for {
		rec, err = reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return stats, errors.Wrap(err, inFile)
		}

		if !keep.Contains(rec.ID()) {
			continue
		}
		if err = rec.Write(outfh.Writer); err != nil {
			return stats, errors.Wrap(err, outFile)
		}
		stats.Written++
	}

	stats.Records = reader.Records()
	stats.Malformed = reader.Malformed()
	stats.Truncated = reader.Truncated()

	return stats, outfh.Close()
}

// Outputs are the paths of the two partitions of one read container.
type Outputs struct {
	Assigned   string
	Unassigned string
}

// Split partitions one read container into assigned and unassigned reads.
// With nil assignments both outputs are empty.
func Split(inFile string, a *assign.SampleAssignments, out Outputs) (assigned Stats, unassigned Stats, err error) {
	var keepA, keepU IDSet
	if a != nil {
		keepA, keepU = a.Assigned(), a.Unassigned()
	}

	assigned, err = Partition(inFile, out.Assigned, keepA)
	if err != nil {
		return
	}
	unassigned, err = Partition(inFile, out.Unassigned, keepU)
	return
}
