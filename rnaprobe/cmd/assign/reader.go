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
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
	"github.com/shenwei356/breader"
)

// ErrNotFound means the per-read assignment file does not exist.
var ErrNotFound = stream.ErrNotFound

// Format is the format of a per-read assignment file.
type Format string

// Supported formats.
const (
	// FormatCore is the tab-delimited "-R CORE" output of featureCounts:
	// read name, status, number of targets, targets.
	FormatCore Format = "core"
	// FormatSAM and FormatBAM are alignments carrying the status in the
	// XS auxiliary tag ("-R SAM" or "-R BAM" of featureCounts).
	FormatSAM Format = "sam"
	FormatBAM Format = "bam"
)

// StatusTag is the auxiliary tag holding the assignment status.
var StatusTag = sam.NewTag("XS")

// ChunkSize is the number of lines parsed by each thread.
var ChunkSize = 5000

// ParseFormat checks a format name, an empty name means guessing from the
// file name.
func ParseFormat(name string, file string) (Format, error) {
	switch strings.ToLower(name) {
	case "":
		return FormatFromName(file), nil
	case "core":
		return FormatCore, nil
	case "sam":
		return FormatSAM, nil
	case "bam":
		return FormatBAM, nil
	}
	return "", errors.Errorf("invalid assignment file format: %s, available: core, sam, bam", name)
}

// FormatFromName guesses the format from the file extension.
func FormatFromName(file string) Format {
	name := strings.ToLower(file)
	name = strings.TrimSuffix(name, ".gz")
	switch {
	case strings.HasSuffix(name, ".bam"):
		return FormatBAM
	case strings.HasSuffix(name, ".sam"):
		return FormatSAM
	}
	return FormatCore
}

// Read classifies all reads of a sample from a per-read assignment file.
// A missing file returns an error wrapping ErrNotFound.
func Read(file string, format Format, sampleID string, threads int) (*SampleAssignments, error) {
	if file != "-" {
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(ErrNotFound, file)
			}
			return nil, errors.Wrap(err, file)
		}
	}

	switch format {
	case FormatSAM:
		return ReadAlignments(file, false, sampleID)
	case FormatBAM:
		return ReadAlignments(file, true, sampleID)
	}
	return ReadCore(file, sampleID, threads)
}

type taggedRead struct {
	id  string
	tag string
}

// ReadCore reads a featureCounts "-R CORE" table. Lines are parsed in
// parallel but folded in file order, so last-write-wins follows the file.
func ReadCore(file string, sampleID string, threads int) (*SampleAssignments, error) {
	a := New(sampleID)

	if file != "-" {
		ok, err := stream.NonEmpty(file)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		if !ok {
			return a, nil
		}
	}
	if threads < 1 {
		threads = 1
	}

	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}
		var id, tag string
		i := strings.IndexByte(line, '\t')
		if i < 0 {
			id = line
		} else {
			id = line[:i]
			tag = line[i+1:]
			if j := strings.IndexByte(tag, '\t'); j >= 0 {
				tag = tag[:j]
			}
		}
		if id == "" {
			return nil, false, nil
		}
		return taggedRead{id: id, tag: tag}, true, nil
	}

	reader, err := breader.NewBufferedReader(file, threads, ChunkSize, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	var r taggedRead
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, file)
		}
		for _, data := range chunk.Data {
			r = data.(taggedRead)
			a.Add(r.id, r.tag)
		}
	}
	return a, nil
}

type alignmentReader interface {
	Read() (*sam.Record, error)
}

// ReadAlignments reads SAM (optionally gzipped) or BAM records and
// classifies each read by the XS tag. Records without the tag are
// classified as Other.
func ReadAlignments(file string, isBAM bool, sampleID string) (*SampleAssignments, error) {
	a := New(sampleID)

	var ar alignmentReader
	if isBAM {
		fh, err := os.Open(file)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		defer fh.Close()

		br, err := bam.NewReader(fh, 1)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		defer br.Close()
		ar = br
	} else {
		in, err := stream.In(file)
		if err != nil {
			return nil, err
		}
		defer in.Close()

		sr, err := sam.NewReader(in)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		ar = sr
	}

	var rec *sam.Record
	var err error
	var tag string
	for {
		rec, err = ar.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, file)
		}

		tag = ""
		if aux := rec.AuxFields.Get(StatusTag); aux != nil {
			if v, ok := aux.Value().(string); ok {
				tag = v
			}
		}
		a.Add(rec.Name, tag)
	}
	return a, nil
}
