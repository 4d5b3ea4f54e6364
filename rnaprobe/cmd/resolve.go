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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/besthit"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/summary"
	"github.com/spf13/cobra"
)

const matchedFile = "matchedSequences.tsv"
const summaryFile = "summaryPerSample.tsv"

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Keep the best hit of each query and count hits per sample",
	Long: `Keep the best hit of each query and count hits per sample

Input is the tabular output of BLAST with these columns:
  -outfmt "6 qseqid sseqid pident length mismatch gapopen qstart qend sstart send evalue bitscore qcovs stitle"
Blank lines and lines starting with "#" are ignored, lines with fewer
than 14 columns or invalid numbers are skipped.

Hits passing all thresholds are candidates:
  pident >= --min-pident, qcovs >= --min-qcov, evalue <= --max-evalue
For each query, the candidate with the highest bitscore is kept, ties
are broken by the lowest evalue, and then by the order in the input.

Output files in the output directory:
  matchedSequences.tsv   best hits, in the order queries first appear
  summaryPerSample.tsv   sample_id, subject_title, count, sorted by
                         sample_id and descending count
Sample ids are the text before the first "_" of query ids, or "Unknown".

A missing or empty input file produces header-only output files.

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

		th := besthit.Thresholds{
			MinPident: getFlagNonNegativeFloat64(cmd, "min-pident"),
			MinQcov:   getFlagNonNegativeFloat64(cmd, "min-qcov"),
			MaxEvalue: getFlagNonNegativeFloat64(cmd, "max-evalue"),
		}
		checkError(th.Validate())
		outDir := getFlagString(cmd, "out-dir")
		chunkSize := getFlagPositiveInt(cmd, "chunk-size")
		besthit.ChunkSize = chunkSize

		if len(args) > 1 {
			checkError(fmt.Errorf("only one input file is allowed"))
		}
		var file string
		if len(args) == 0 {
			file = "-"
		} else {
			file = args[0]
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("rnaprobe v%s", VERSION)
			log.Info("  https://github.com/rnaprobe/rnaprobe")
			log.Info()
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("minimum percent identity: %v", th.MinPident)
			log.Infof("minimum query coverage: %v", th.MinQcov)
			log.Infof("maximum e-value: %v", th.MaxEvalue)
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
		}

		table, stats, err := besthit.Resolve(file, th, opt.NumCPUs)
		if err != nil {
			if !stream.IsNotFound(err) {
				checkError(err)
			}
			log.Warningf("%s, writing empty outputs", err)
			table = besthit.NewTable()
		} else if stats.Lines == 0 {
			log.Warningf("no hits in file: %s, writing empty outputs", file)
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("%s hit(s) parsed, %s malformed, %s passed the thresholds",
				humanize.Comma(int64(stats.Lines)), humanize.Comma(int64(stats.Malformed)), humanize.Comma(int64(stats.Passed)))
			log.Infof("%s queries with best hits", humanize.Comma(int64(table.Len())))
		}

		checkError(os.MkdirAll(outDir, 0777))

		fileMatched := filepath.Join(outDir, matchedFile)
		outfh, err := stream.Out(fileMatched, false, opt.CompressionLevel)
		checkError(err)
		checkError(besthit.Write(outfh.Writer, table.Hits()))
		checkError(outfh.Close())

		rows := summary.Aggregate(table.Hits())
		fileSummary := filepath.Join(outDir, summaryFile)
		outfh, err = stream.Out(fileSummary, false, opt.CompressionLevel)
		checkError(err)
		checkError(summary.Write(outfh.Writer, rows))
		checkError(outfh.Close())

		if opt.Verbose || opt.Log2File {
			log.Infof("best hits saved to: %s", fileMatched)
			log.Infof("summary saved to: %s", fileSummary)
		}
	},
}

func init() {
	RootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().Float64P("min-pident", "p", besthit.DefaultThresholds.MinPident, `minimum percent identity, in range of [0, 100]`)
	resolveCmd.Flags().Float64P("min-qcov", "c", besthit.DefaultThresholds.MinQcov, `minimum query coverage per subject (qcovs), in range of [0, 100]`)
	resolveCmd.Flags().Float64P("max-evalue", "e", besthit.DefaultThresholds.MaxEvalue, `maximum e-value`)
	resolveCmd.Flags().StringP("out-dir", "O", ".", `output directory`)
	resolveCmd.Flags().IntP("chunk-size", "", 5000, `number of lines to process for each thread`)
}
