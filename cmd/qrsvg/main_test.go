// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qrsvg"
)

func TestColour(t *testing.T) {
	tests := []struct {
		in, str, svg string
	}{
		{"black", "black", "#000"},
		{"White", "white", "#fff"},
		{"000", "black", "#000"},
		{"#fff", "white", "#fff"},
		{"f00", "ff0000", "#ff0000"},
		{"f008", "ff000088", "#ff000088"},
		{"#1a237e", "1a237e", "#1a237e"},
		{"1a237e80", "1a237e80", "#1a237e80"},
		{"transparent", "00000000", "#00000000"},
	}
	for _, tt := range tests {
		var c rgba
		require.NoError(t, c.Set(tt.in, nil), tt.in)
		assert.Equal(t, tt.str, c.String(), tt.in)
		assert.Equal(t, tt.svg, c.SVG(), tt.in)
	}
	for _, s := range []string{"", "12345", "#ggg", "chartreuse"} {
		var c rgba
		assert.Error(t, c.UnmarshalText([]byte(s)), s)
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv,
		[]byte("QRSVG_LEVEL=h\nQRSVG_SIZE=300\nQRSVG_DARK=navy\n"), 0666))
	t.Setenv("QRSVG_SIZE", "120")
	t.Setenv("QRSVG_WORKERS", "0")
	// Variables set from .env are restored on cleanup.
	for _, k := range []string{"QRSVG_LEVEL", "QRSVG_DARK"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	c, err := loadConfig(dotenv, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "h", c.Level)
	assert.Equal(t, 120, c.Size) // the environment wins over .env
	assert.Equal(t, 4, c.QuietZone)
	assert.Equal(t, rgb["navy"], c.Dark)
	assert.Equal(t, white, c.Light)
	assert.Equal(t, 1, c.Workers)
	assert.False(t, c.Debug)

	t.Setenv("QRSVG_LIGHT", "nope")
	_, err = loadConfig()
	assert.Error(t, err)
}

func baseJob() job {
	return job{
		Level: "m", Mode: "auto", Mask: -1, Size: 200, QuietZone: 4,
		Dark: "#000", Light: "#fff",
	}
}

const testManifest = `
defaults:
  level: q
  size: 100
codes:
  - text: HELLO WORLD
    output: hello.svg
  - text: "1"
    output: one.svg
    level: m
    size: 200
  - text: "12345"
    output: digits.svg
    mode: numeric
    mask: 3
    quiet_zone: 2
    dark: navy
`

func TestParseManifest(t *testing.T) {
	jobs, err := parseManifest([]byte(testManifest), baseJob())
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "HELLO WORLD", jobs[0].Text)
	assert.Equal(t, "q", jobs[0].Level)
	assert.Equal(t, 100, jobs[0].Size)
	assert.Equal(t, -1, jobs[0].Mask)
	assert.Equal(t, 4, jobs[0].QuietZone)

	assert.Equal(t, "m", jobs[1].Level)
	assert.Equal(t, 200, jobs[1].Size)

	assert.Equal(t, "numeric", jobs[2].Mode)
	assert.Equal(t, 3, jobs[2].Mask)
	assert.Equal(t, 2, jobs[2].QuietZone)
	assert.Equal(t, "navy", jobs[2].Dark)
	assert.Equal(t, "q", jobs[2].Level)
	assert.Equal(t, 100, jobs[2].Size)
}

func TestParseManifestErrors(t *testing.T) {
	for _, tt := range []struct {
		data  string
		index int
	}{
		{"codes: [", -1},
		{"defaults: {level: q}", -1},
		{"codes:\n  - text: x\n", 0},
		{"codes:\n  - {text: x, output: a.svg}\n  - {text: y, output: b.svg, level: z}\n", 1},
		{"codes:\n  - {text: x, output: a.svg, dark: nope}\n", 0},
		{"codes:\n  - {text: x, output: a.svg, size: [1]}\n", 0},
	} {
		_, err := parseManifest([]byte(tt.data), baseJob())
		var le *loadError
		require.ErrorAs(t, err, &le, tt.data)
		assert.Equal(t, tt.index, le.Index, tt.data)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "codes.yaml")
	require.NoError(t, os.WriteFile(file, []byte(testManifest), 0666))
	jobs, err := loadManifest(file, baseJob())
	require.NoError(t, err)
	require.NoError(t, runBatch(context.Background(), jobs, 2))

	got, err := os.ReadFile(filepath.Join(dir, "one.svg"))
	require.NoError(t, err)
	want, err := os.ReadFile("../../testdata/one.svg")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	got, err = os.ReadFile(filepath.Join(dir, "digits.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(got), `fill="#000080"`)

	_, err = os.Stat(filepath.Join(dir, "hello.svg"))
	assert.NoError(t, err)
}

func TestRunBatchError(t *testing.T) {
	dir := t.TempDir()
	jobs := []job{baseJob(), baseJob()}
	jobs[0].Text, jobs[0].Output = "ok", filepath.Join(dir, "ok.svg")
	jobs[1].Text, jobs[1].Output = "abc", filepath.Join(dir, "bad.svg")
	jobs[1].Mode = "numeric"
	err := runBatch(context.Background(), jobs, 1)
	assert.ErrorIs(t, err, qrsvg.ErrInvalidCharacter)
	_, err = os.Stat(filepath.Join(dir, "bad.svg"))
	assert.True(t, os.IsNotExist(err))

	_, err = loadManifest(filepath.Join(dir, "missing.yaml"), baseJob())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite(t *testing.T) {
	j := baseJob()
	j.Text = "1"
	var b bytes.Buffer
	require.NoError(t, write(&b, &j))
	want, err := os.ReadFile("../../testdata/one.svg")
	require.NoError(t, err)
	assert.Equal(t, string(want), b.String())

	j.Level = "x"
	assert.ErrorIs(t, write(&b, &j), qrsvg.ErrInvalidOption)

	j = baseJob()
	j.Text = strings.Repeat("a", 3000)
	j.Level = "l"
	assert.ErrorIs(t, write(&b, &j), qrsvg.ErrCapacityExceeded)
}
