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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/assign"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/searchinput"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/stream"
	"github.com/spf13/cobra"
	"github.com/tatsushid/go-prettytable"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Count reads of each assignment status",
	Long: `Count reads of each assignment status

Input files are per-read assignment files of featureCounts:
  core: the "-R CORE" table: read name, status, number of targets, targets.
  sam:  the "-R SAM" alignments, status in the XS:Z tag.
  bam:  the "-R BAM" alignments, status in the XS:Z tag.
The format is guessed from the file extension if -f/--format is not given.

Status:
  Assigned, Unassigned_Unmapped, Unassigned_NoFeatures,
  Unassigned_MappingQuality, Unassigned_Ambiguous (or Unassigned_Ambiguity).
  Other or missing status are counted as Unassigned_Other.
  If a read appears more than once, its last status is used.

Sample ids are file names up to the first ".", unless given by -s/--sample-id.

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

		formatName := getFlagString(cmd, "format")
		sampleIDs := getFlagStringSlice(cmd, "sample-id")
		outFile := getFlagString(cmd, "out-file")
		pretty := getFlagBool(cmd, "pretty")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		if len(files) == 1 && isStdin(files[0]) && formatName == "" {
			checkError(fmt.Errorf("flag -f/--format is needed for stdin"))
		}
		if len(sampleIDs) > 0 && len(sampleIDs) != len(files) {
			checkError(fmt.Errorf("number of sample ids (%d) does not match number of files (%d)", len(sampleIDs), len(files)))
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("rnaprobe v%s", VERSION)
			log.Info("  https://github.com/rnaprobe/rnaprobe")
			log.Info()
			log.Infof("%d input file(s) given", len(files))
		}

		samples := make([]*assign.SampleAssignments, 0, len(files))
		for i, file := range files {
			format, err := assign.ParseFormat(formatName, file)
			checkError(err)

			var sampleID string
			if len(sampleIDs) > 0 {
				sampleID = sampleIDs[i]
			} else {
				sampleID = searchinput.Stem(file)
			}

			a, err := assign.Read(file, format, sampleID, opt.NumCPUs)
			checkError(err)

			if opt.Verbose || opt.Log2File {
				log.Infof("  %s: %s reads, %s assigned", sampleID,
					humanize.Comma(int64(a.Total())), humanize.Comma(int64(a.Count(assign.Assigned))))
			}
			samples = append(samples, a)
		}

		outfh, err := stream.Out(outFile, stream.IsGzipName(outFile), opt.CompressionLevel)
		checkError(err)
		defer func() {
			checkError(outfh.Close())
		}()

		if !pretty {
			checkError(assign.WriteSummary(outfh.Writer, samples))
			return
		}

		header := assign.SummaryHeader()
		columns := make([]prettytable.Column, len(header))
		for i, h := range header {
			columns[i] = prettytable.Column{Header: h, AlignRight: i > 0}
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "

		var row []interface{}
		for _, a := range samples {
			row = row[:0]
			row = append(row, a.SampleID)
			for _, c := range assign.Categories {
				row = append(row, humanize.Comma(int64(a.Count(c))))
			}
			tbl.AddRow(row...)
		}
		outfh.Write(tbl.Bytes())
	},
}

func init() {
	RootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringP("format", "f", "", `format of per-read assignment files: core, sam, bam. guessed from file extension by default`)
	classifyCmd.Flags().StringSliceP("sample-id", "s", []string{}, `sample ids of input files, in the same order`)
	classifyCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout), compressed when ending with .gz`)
	classifyCmd.Flags().BoolP("pretty", "p", false, `print an aligned table instead of tab-delimited text`)
}
