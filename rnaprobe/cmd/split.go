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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/assign"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/manifest"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/partition"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

const assignmentSummaryFile = "assignment_summary.tsv"

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split reads of samples into assigned and unassigned ones",
	Long: `Split reads of samples into assigned and unassigned ones

Samples are given by a YAML manifest (-m/--manifest):

    samples:
      - id: S1
        condition: control
        assignments: fc/S1.featureCounts   # per-read assignment file
        format: core                       # core, sam or bam, optional
        reads:
          mate1: star/S1_Unmapped.out.mate1
          mate2: star/S1_Unmapped.out.mate2  # optional

or a tab-delimited sample sheet (-s/--sample-sheet) with a header row:
    sample_id  condition  fastq1  [fastq2]  [assignments]  [format]

Relative paths are relative to the directory of the manifest or sample sheet.

Output files in the output directory:
    <id>.assigned.fastq        <id>.unassigned.fastq
    <id>.assigned.mate2.fastq  <id>.unassigned.mate2.fastq
    assignment_summary.tsv

Attention:
  1. A missing assignment file or read file does not stop the run,
     empty output files are created for the sample instead.
  2. Sample ids should not contain "_", which separates sample ids
     and read ids in search queries.
  3. Read files are read in blocks of 4 lines. A block not starting
     with "@" is skipped as malformed, and a stray or missing line
     shifts all later blocks, so every record after it is skipped too.
     Check the number of malformed records in the log.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		manifestFile := getFlagString(cmd, "manifest")
		sampleSheet := getFlagString(cmd, "sample-sheet")
		outDir := getFlagString(cmd, "out-dir")
		force := getFlagBool(cmd, "force")
		gzipped := getFlagBool(cmd, "out-gzip")

		if (manifestFile == "") == (sampleSheet == "") {
			checkError(fmt.Errorf("one of flag -m/--manifest and -s/--sample-sheet is needed"))
		}
		if outDir == "" {
			checkError(fmt.Errorf("flag -O/--out-dir is needed"))
		}

		var m *manifest.Manifest
		var err error
		if manifestFile != "" {
			m, err = manifest.Load(manifestFile)
		} else {
			m, err = manifest.ReadSampleSheet(sampleSheet)
		}
		checkError(err)

		for _, w := range m.Check() {
			log.Warning(w)
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("rnaprobe v%s", VERSION)
			log.Info("  https://github.com/rnaprobe/rnaprobe")
			log.Info()
			log.Infof("%d sample(s) given", len(m.Samples))
			log.Infof("output directory: %s", outDir)
			log.Info()
		}

		makeOutDir(outDir, force)

		workers := opt.NumCPUs
		if workers > len(m.Samples) {
			workers = len(m.Samples)
		}
		threads := opt.NumCPUs / workers
		if threads < 1 {
			threads = 1
		}

		var pbs *mpb.Progress
		var bar *mpb.Bar
		var chDuration chan time.Duration
		var doneDuration chan int
		if opt.Verbose {
			pbs = mpb.New(mpb.WithWidth(79), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(m.Samples)),
				mpb.BarStyle("[=>-]<+"),
				mpb.PrependDecorators(
					decor.Name("processing sample: ", decor.WC{W: len("processing sample: "), C: decor.DidentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.EwmaETA(decor.ET_STYLE_GO, 10),
				),
			)

			chDuration = make(chan time.Duration, workers)
			doneDuration = make(chan int)
			go func() {
				for t := range chDuration {
					bar.Increment()
					bar.DecoratorEwmaUpdate(t)
				}
				doneDuration <- 1
			}()
		}

		results := splitSamples(m.Samples, outDir, gzipped, workers, threads, chDuration)

		if chDuration != nil {
			close(chDuration)
			<-doneDuration
			pbs.Wait()
		}

		samples := make([]*assign.SampleAssignments, len(results))
		for i, r := range results {
			checkError(r.err)
			for _, w := range r.warnings {
				log.Warning(w)
			}
			samples[i] = r.assignments

			if opt.Verbose || opt.Log2File {
				log.Infof("sample %s: %s reads classified", r.id, humanize.Comma(int64(r.assignments.Total())))
				for j, stats := range r.stats {
					log.Infof("  mate%d: %s assigned and %s unassigned reads written", j+1,
						humanize.Comma(int64(stats[0].Written)), humanize.Comma(int64(stats[1].Written)))
				}
			}
		}

		file := filepath.Join(outDir, assignmentSummaryFile)
		outfh, err := stream.Out(file, false, opt.CompressionLevel)
		checkError(err)
		checkError(assign.WriteSummary(outfh.Writer, samples))
		checkError(outfh.Close())

		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("assignment summary saved to: %s", file)
		}
	},
}

type splitResult struct {
	id          string
	assignments *assign.SampleAssignments
	stats       [][2]partition.Stats // [mate][assigned, unassigned]
	warnings    []error
	err         error
}

// splitSamples processes samples with at most workers goroutines. The time
// spent on each sample is sent to progress, if not nil, before the call
// returns, so the caller may close progress afterwards.
func splitSamples(samples []manifest.Sample, outDir string, gzipped bool, workers int, threads int,
	progress chan<- time.Duration) []*splitResult {
	results := make([]*splitResult, len(samples))

	var wg sync.WaitGroup
	tokens := make(chan int, workers)
	for i, s := range samples {
		tokens <- 1
		wg.Add(1)

		go func(i int, s manifest.Sample) {
			startTime := time.Now()
			defer func() {
				if progress != nil {
					progress <- time.Since(startTime)
				}
				<-tokens
				wg.Done()
			}()

			results[i] = splitSample(s, outDir, gzipped, threads)
		}(i, s)
	}
	wg.Wait()

	return results
}

// splitOutputs returns the output files of one mate of a sample.
func splitOutputs(outDir string, id string, mate int, gzipped bool) partition.Outputs {
	suffix := ".fastq"
	if mate > 1 {
		suffix = fmt.Sprintf(".mate%d.fastq", mate)
	}
	if gzipped {
		suffix += ".gz"
	}
	return partition.Outputs{
		Assigned:   filepath.Join(outDir, id+".assigned"+suffix),
		Unassigned: filepath.Join(outDir, id+".unassigned"+suffix),
	}
}

func splitSample(s manifest.Sample, outDir string, gzipped bool, threads int) *splitResult {
	r := &splitResult{id: s.ID}

	var a *assign.SampleAssignments
	if s.Assignments == "" {
		r.warnings = append(r.warnings, errors.Errorf("sample %s: no assignment file, writing empty outputs", s.ID))
	} else {
		format, err := assign.ParseFormat(s.Format, s.Assignments)
		if err != nil {
			r.err = errors.Wrapf(err, "sample %s", s.ID)
			return r
		}
		a, err = assign.Read(s.Assignments, format, s.ID, threads)
		if err != nil {
			if !stream.IsNotFound(err) {
				r.err = errors.Wrapf(err, "sample %s", s.ID)
				return r
			}
			r.warnings = append(r.warnings, errors.Wrapf(err, "sample %s: assignment file not found, writing empty outputs", s.ID))
			a = nil
		}
	}
	if a == nil {
		r.assignments = assign.New(s.ID)
	} else {
		r.assignments = a
	}

	mates := []string{s.Reads.Mate1}
	if s.Paired() {
		mates = append(mates, s.Reads.Mate2)
	}
	r.stats = make([][2]partition.Stats, len(mates))
	for i, file := range mates {
		sa, su, err := partition.Split(file, a, splitOutputs(outDir, s.ID, i+1, gzipped))
		if err != nil {
			r.err = errors.Wrapf(err, "sample %s", s.ID)
			return r
		}
		r.stats[i] = [2]partition.Stats{sa, su}

		switch {
		case sa.Missing:
			r.warnings = append(r.warnings, errors.Errorf("sample %s: read file not found: %s", s.ID, file))
		case sa.Truncated:
			r.warnings = append(r.warnings, errors.Errorf("sample %s: truncated last record ignored: %s", s.ID, file))
		}
		if sa.Malformed > 0 {
			r.warnings = append(r.warnings, errors.Errorf("sample %s: %d malformed record(s) skipped: %s",
				s.ID, sa.Malformed, file))
		}
	}
	return r
}

func init() {
	RootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringP("manifest", "m", "", `YAML manifest of samples`)
	splitCmd.Flags().StringP("sample-sheet", "s", "", `tab-delimited sample sheet`)
	splitCmd.Flags().StringP("out-dir", "O", "", `output directory`)
	splitCmd.Flags().BoolP("force", "", false, `overwrite output directory`)
	splitCmd.Flags().BoolP("out-gzip", "z", false, `gzip output read files`)
}
