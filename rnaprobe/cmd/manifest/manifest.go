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

// Package manifest describes the samples of a run: their per-read
// assignment files and read containers.
package manifest

import (
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"gopkg.in/yaml.v2"
)

// Separator is the provenance separator of search query ids, sample ids
// containing it can not be recovered from query ids.
const Separator = "_"

// Reads are the read containers of a sample.
type Reads struct {
	Mate1 string `yaml:"mate1"`
	Mate2 string `yaml:"mate2,omitempty"`
}

// Sample is one sample of a run.
type Sample struct {
	ID          string `yaml:"id"`
	Condition   string `yaml:"condition,omitempty"`
	Assignments string `yaml:"assignments,omitempty"` // per-read assignment file
	Format      string `yaml:"format,omitempty"`      // core, sam or bam, empty for guessing
	Reads       Reads  `yaml:"reads"`
}

// Paired tells whether the sample has a second mate.
func (s Sample) Paired() bool { return s.Reads.Mate2 != "" }

// Manifest lists the samples of a run.
type Manifest struct {
	Samples []Sample `yaml:"samples"`
}

// Load reads a YAML manifest. Relative paths are relative to the directory
// of the manifest file.
func Load(file string) (*Manifest, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "fail to read manifest")
	}

	m := &Manifest{}
	if err = yaml.UnmarshalStrict(data, m); err != nil {
		return nil, errors.Wrapf(err, "fail to parse manifest: %s", file)
	}

	if err = m.resolve(filepath.Dir(file)); err != nil {
		return nil, errors.Wrap(err, file)
	}
	if err = m.Validate(); err != nil {
		return nil, errors.Wrap(err, file)
	}
	return m, nil
}

func (m *Manifest) resolve(dir string) error {
	var err error
	for i := range m.Samples {
		s := &m.Samples[i]
		s.ID = strings.TrimSpace(s.ID)
		for _, p := range []*string{&s.Assignments, &s.Reads.Mate1, &s.Reads.Mate2} {
			if *p, err = expandPath(*p, dir); err != nil {
				return errors.Wrapf(err, "sample %s", s.ID)
			}
		}
	}
	return nil
}

func expandPath(p string, dir string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || p == "-" {
		return p, nil
	}
	p, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) && dir != "" {
		p = filepath.Join(dir, p)
	}
	return p, nil
}

// Validate checks that sample ids are unique and not empty, and that every
// sample has its first mate.
func (m *Manifest) Validate() error {
	if len(m.Samples) == 0 {
		return errors.New("no samples given")
	}
	ids := make(map[string]struct{}, len(m.Samples))
	for i, s := range m.Samples {
		if s.ID == "" {
			return errors.Errorf("sample #%d: empty sample id", i+1)
		}
		if _, ok := ids[s.ID]; ok {
			return errors.Errorf("duplicated sample id: %s", s.ID)
		}
		ids[s.ID] = struct{}{}

		if s.Reads.Mate1 == "" {
			return errors.Errorf("sample %s: reads of mate1 not given", s.ID)
		}
		switch strings.ToLower(s.Format) {
		case "", "core", "sam", "bam":
		default:
			return errors.Errorf("sample %s: invalid assignment file format: %s", s.ID, s.Format)
		}
	}
	return nil
}

// Check reports problems that do not stop a run: missing files and sample
// ids containing the provenance separator.
func (m *Manifest) Check() []error {
	var warnings []error
	for _, s := range m.Samples {
		if strings.Contains(s.ID, Separator) {
			warnings = append(warnings,
				errors.Errorf("sample %s: id contains %q, hits of its reads will be attributed to %s",
					s.ID, Separator, s.ID[:strings.Index(s.ID, Separator)]))
		}
		if s.Assignments == "" {
			warnings = append(warnings, errors.Errorf("sample %s: no assignment file", s.ID))
		}
		for _, file := range []string{s.Assignments, s.Reads.Mate1, s.Reads.Mate2} {
			if file == "" || file == "-" {
				continue
			}
			ok, err := pathutil.Exists(file)
			if err != nil {
				warnings = append(warnings, errors.Wrapf(err, "sample %s", s.ID))
			} else if !ok {
				warnings = append(warnings, errors.Errorf("sample %s: file not found: %s", s.ID, file))
			}
		}
	}
	return warnings
}
