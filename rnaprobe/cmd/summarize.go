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
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/besthit"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/summary"
	"github.com/spf13/cobra"
	"github.com/tatsushid/go-prettytable"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Count best hits per sample and subject from matched-hits tables",
	Long: `Count best hits per sample and subject from matched-hits tables

Input files are matched-hits tables written by "rnaprobe resolve"
(matchedSequences.tsv), rows of multiple files are counted together.
The header rows are ignored.

Output columns: sample_id, subject_title, count. Rows are sorted by
sample_id and then descending count.

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

		outFile := getFlagString(cmd, "out-file")
		pretty := getFlagBool(cmd, "pretty")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		counter := summary.NewCounter()
		var n int
		for _, file := range files {
			hits, stats, err := besthit.ReadMatched(file, opt.NumCPUs)
			checkError(err)
			if stats.Malformed > 0 {
				log.Warningf("%d malformed row(s) skipped: %s", stats.Malformed, file)
			}
			for _, h := range hits {
				counter.Add(h.QueryID, h.SubjectTitle)
			}
			n += len(hits)
		}
		rows := counter.Rows()

		if opt.Verbose || opt.Log2File {
			log.Infof("%s best hit(s) from %d file(s) counted into %s row(s)",
				humanize.Comma(int64(n)), len(files), humanize.Comma(int64(len(rows))))
		}

		outfh, err := stream.Out(outFile, stream.IsGzipName(outFile), opt.CompressionLevel)
		checkError(err)
		defer func() {
			checkError(outfh.Close())
		}()

		if !pretty {
			checkError(summary.Write(outfh.Writer, rows))
			return
		}

		tbl, err := prettytable.NewTable([]prettytable.Column{
			{Header: summary.Header[0]},
			{Header: summary.Header[1]},
			{Header: summary.Header[2], AlignRight: true},
		}...)
		checkError(err)
		tbl.Separator = "  "
		for _, r := range rows {
			tbl.AddRow(r.SampleID, r.SubjectTitle, humanize.Comma(int64(r.Count)))
		}
		outfh.Write(tbl.Bytes())
	},
}

func init() {
	RootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout), compressed when ending with .gz`)
	summarizeCmd.Flags().BoolP("pretty", "p", false, `print an aligned table instead of tab-delimited text`)
}
