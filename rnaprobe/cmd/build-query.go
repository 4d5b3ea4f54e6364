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
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rnaprobe/rnaprobe/rnaprobe/cmd/searchinput"
	"github.com/spf13/cobra"
)

// defaultQueryFileRegexp matches mate1 unassigned read files of split.
const defaultQueryFileRegexp = `\.unassigned\.f(ast)?q(\.gz)?$`

var buildQueryCmd = &cobra.Command{
	Use:   "build-query",
	Short: "Convert unassigned reads into a FASTA file for homology search",
	Long: `Convert unassigned reads into a FASTA file for homology search

Input files are processed in lexicographic order of their paths. Sequence
ids are prefixed with the file name up to the first ".", followed by "_",
e.g., read "r1" in "S1.unassigned.fastq.gz" becomes "S1_r1".

At most -n/--sample-size sequences are written across all input files
(0 for no limit): files are read one by one and the first sequences are
kept, the remaining files are not read once the limit is reached.

Input files can be given as positional arguments, in a file list
(-i/--infile-list), or searched in a directory (--in-dir) with
a regular expression of file names (--file-regexp).

Attention:
  The default --file-regexp only matches mate1 files of "rnaprobe split"
  (<id>.unassigned.fastq[.gz]), mate2 files (<id>.unassigned.mate2.fastq)
  are not used. Do not search mate1 and mate2 files together: reads of
  both mates share the same id, so they would produce the same query id
  (e.g., "S1_r1") and be merged as one query when resolving hits.

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

		inDir := getFlagString(cmd, "in-dir")
		reFileStr := getFlagString(cmd, "file-regexp")
		sampleSize := getFlagNonNegativeInt(cmd, "sample-size")
		outDir := getFlagString(cmd, "out-dir")
		outName := getFlagString(cmd, "out-file")

		if outName == "" {
			checkError(fmt.Errorf("flag -o/--out-file should not be empty"))
		}

		var files []string
		if inDir != "" {
			reFile, err := regexp.Compile(reFileStr)
			checkError(err)
			files, err = getFileListFromDir(inDir, reFile, opt.NumCPUs)
			checkError(err)
			if len(args) > 0 || getFlagString(cmd, "infile-list") != "" {
				files = append(files, getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)...)
			}
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
			if len(files) == 1 && isStdin(files[0]) {
				checkError(fmt.Errorf("input files needed, from arguments, -i/--infile-list, or --in-dir"))
			}
		}
		if len(files) == 0 {
			checkError(fmt.Errorf("no input files found"))
		}

		checkError(os.MkdirAll(outDir, 0777))
		outFile := filepath.Join(outDir, outName)

		if opt.Verbose || opt.Log2File {
			log.Infof("rnaprobe v%s", VERSION)
			log.Info("  https://github.com/rnaprobe/rnaprobe")
			log.Info()
			log.Infof("%d input file(s) given", len(files))
			if sampleSize > 0 {
				log.Infof("sample size: %s", humanize.Comma(int64(sampleSize)))
			} else {
				log.Infof("sample size: no limit")
			}
			log.Info()
		}

		stats, warnings, err := searchinput.Build(files, sampleSize, outFile)
		for _, w := range warnings {
			log.Warningf("skipped: %s", w)
		}
		checkError(err)

		if opt.Verbose || opt.Log2File {
			log.Infof("%s sequences from %d file(s) saved to: %s",
				humanize.Comma(int64(stats.Written)), stats.Files, outFile)
			if stats.Exhausted {
				log.Infof("sample size reached, remaining sequences ignored")
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(buildQueryCmd)

	buildQueryCmd.Flags().StringP("in-dir", "I", "", `directory containing read files`)
	buildQueryCmd.Flags().StringP("file-regexp", "r", defaultQueryFileRegexp, `regular expression for matching read files in --in-dir`)
	buildQueryCmd.Flags().IntP("sample-size", "n", searchinput.DefaultSampleSize, `maximum number of sequences to write, 0 for no limit`)
	buildQueryCmd.Flags().StringP("out-dir", "O", ".", `output directory`)
	buildQueryCmd.Flags().StringP("out-file", "o", "sequenceUa_combined.fasta", `output file name, compressed when ending with .gz`)
}
