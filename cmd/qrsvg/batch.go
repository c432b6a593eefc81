// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/unixdj/qrsvg"
)

// A job describes one symbol in a batch manifest.
type job struct {
	Text      string `yaml:"text"`
	Output    string `yaml:"output"`
	Level     string `yaml:"level"`
	Version   int    `yaml:"version"`
	Mode      string `yaml:"mode"`
	Mask      int    `yaml:"mask"`
	Size      int    `yaml:"size"`
	QuietZone int    `yaml:"quiet_zone"`
	Dark      string `yaml:"dark"`
	Light     string `yaml:"light"`
	Parallel  bool   `yaml:"parallel"`
}

// A manifest is a list of jobs.  Each entry of codes starts from
// defaults and overrides the fields it sets.
type manifest struct {
	Defaults job         `yaml:"defaults"`
	Codes    []yaml.Node `yaml:"codes"`
}

// A loadError is a manifest that cannot be read.
type loadError struct {
	File    string
	Index   int // job index, -1 for the whole manifest
	Message string
	Cause   error
}

func (e *loadError) Error() string {
	s := e.File + ": "
	if e.Index >= 0 {
		s += fmt.Sprintf("code %d: ", e.Index+1)
	}
	s += e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *loadError) Unwrap() error { return e.Cause }

// parseManifest returns the jobs in manifest data, starting from base.
func parseManifest(data []byte, base job) ([]job, error) {
	m := manifest{Defaults: base}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &loadError{Index: -1, Message: "invalid manifest", Cause: err}
	}
	if len(m.Codes) == 0 {
		return nil, &loadError{Index: -1, Message: "no codes"}
	}
	jobs := make([]job, len(m.Codes))
	for i := range m.Codes {
		jobs[i] = m.Defaults
		if err := m.Codes[i].Decode(&jobs[i]); err != nil {
			return nil, &loadError{Index: i, Message: "invalid code", Cause: err}
		}
		if jobs[i].Output == "" {
			return nil, &loadError{Index: i, Message: "output is required"}
		}
		if _, err := jobs[i].options(); err != nil {
			return nil, &loadError{Index: i, Message: "invalid code", Cause: err}
		}
		if _, err := jobs[i].renderer(); err != nil {
			return nil, &loadError{Index: i, Message: "invalid code", Cause: err}
		}
	}
	return jobs, nil
}

// loadManifest reads the manifest in file.  Relative outputs are
// relative to the directory of file.
func loadManifest(file string, base job) ([]job, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &loadError{File: file, Index: -1, Message: "cannot read manifest", Cause: err}
	}
	jobs, err := parseManifest(data, base)
	if err != nil {
		err.(*loadError).File = file
		return nil, err
	}
	dir := filepath.Dir(file)
	for i := range jobs {
		if !filepath.IsAbs(jobs[i].Output) {
			jobs[i].Output = filepath.Join(dir, jobs[i].Output)
		}
	}
	return jobs, nil
}

// options returns encoding options for j.
func (j *job) options() ([]qrsvg.Option, error) {
	l, err := qrsvg.ParseLevel(j.Level)
	if err != nil {
		return nil, err
	}
	m, err := qrsvg.ParseMode(j.Mode)
	if err != nil {
		return nil, err
	}
	opts := []qrsvg.Option{
		qrsvg.WithLevel(l),
		qrsvg.WithVersion(j.Version),
		qrsvg.WithMode(m),
		qrsvg.WithMask(j.Mask),
	}
	if j.Parallel {
		opts = append(opts, qrsvg.WithParallelMasks())
	}
	return opts, nil
}

// renderer returns the SVG renderer for j.
func (j *job) renderer() (*qrsvg.SVG, error) {
	var dark, light rgba
	if err := dark.parse(j.Dark); err != nil {
		return nil, err
	}
	if err := light.parse(j.Light); err != nil {
		return nil, err
	}
	return &qrsvg.SVG{
		MinWidth:  j.Size,
		MinHeight: j.Size,
		QuietZone: j.QuietZone,
		Dark:      dark.SVG(),
		Light:     light.SVG(),
	}, nil
}

// run encodes j and writes the image to j.Output.
func (j *job) run() error {
	opts, err := j.options()
	if err != nil {
		return err
	}
	r, err := j.renderer()
	if err != nil {
		return err
	}
	s, err := qrsvg.EncodeString(j.Text, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", j.Output, err)
	}
	f, err := os.Create(j.Output)
	if err != nil {
		return err
	}
	if err := r.Encode(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	w, h := r.Size(s)
	qrsvg.Logger().Info("wrote symbol",
		zap.String("file", j.Output),
		zap.Int("version", s.Version()),
		zap.Stringer("level", s.Level()),
		zap.Int("mask", s.Mask()),
		zap.Int("width", w),
		zap.Int("height", h))
	return nil
}

// runBatch runs jobs with at most workers at a time.  It returns the
// first error, and jobs not yet started are skipped after it.
func runBatch(ctx context.Context, jobs []job, workers int) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range jobs {
		j := &jobs[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return j.run()
		})
	}
	return eg.Wait()
}
