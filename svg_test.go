// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrsvg

import (
	"bytes"
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGolden(t *testing.T) {
	tests := []struct {
		file string
		text string
		opts []Option
	}{
		{"testdata/one.svg", "1", nil},
		{"testdata/hello.svg", "hello", []Option{WithMask(7)}},
	}
	for _, tt := range tests {
		want, err := os.ReadFile(tt.file)
		require.NoError(t, err)
		s, err := EncodeString(tt.text, tt.opts...)
		require.NoError(t, err)
		got, err := Render(s, 200, 200, 4)
		require.NoError(t, err)
		assert.Equal(t, string(want), got, tt.file)
		assert.Contains(t, got, `width="203" height="203" viewBox="0 0 203 203"`)
	}
}

var rectRE = regexp.MustCompile(`M(\d+) (\d+)h(\d+)v(\d+)H(\d+)V(\d+)`)

func TestRenderRects(t *testing.T) {
	s, err := EncodeString("rectangles", WithLevel(H))
	require.NoError(t, err)
	r := NewSVG(100, 300)
	r.QuietZone = 2
	r.Dark = "navy"
	r.Light = "rgb(250,250,250)"
	out, err := r.Render(s)
	require.NoError(t, err)

	n := s.Size() + 4
	uw, uh := 100/n+1, 300/n+1
	w, h := r.Size(s)
	assert.Equal(t, uw*n, w)
	assert.Equal(t, uh*n, h)
	assert.GreaterOrEqual(t, w, 100)
	assert.GreaterOrEqual(t, h, 300)
	assert.Contains(t, out, `fill="navy"`)
	assert.Contains(t, out, `fill="rgb(250,250,250)"`)
	assert.Contains(t, out, `viewBox="0 0 `+strconv.Itoa(w)+" "+strconv.Itoa(h)+`"`)

	rects := rectRE.FindAllStringSubmatch(out, -1)
	var dark []string
	for y := 0; y < s.Size(); y++ {
		for x := 0; x < s.Size(); x++ {
			if s.Dark(x, y) {
				dark = append(dark, strconv.Itoa((x+2)*uw)+","+strconv.Itoa((y+2)*uh))
			}
		}
	}
	require.Len(t, rects, len(dark))
	for i, m := range rects {
		assert.Equal(t, dark[i], m[1]+","+m[2])
		assert.Equal(t, strconv.Itoa(uw), m[3])
		assert.Equal(t, strconv.Itoa(uh), m[4])
		assert.Equal(t, m[1], m[5])
		assert.Equal(t, m[2], m[6])
	}
}

func TestRenderSmall(t *testing.T) {
	// Below one pixel per module the unit is 1.
	s, err := EncodeString("1")
	require.NoError(t, err)
	out, err := Render(s, 1, 10, 0)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `width="21" height="21"`), out[:200])
}

func TestRenderErrors(t *testing.T) {
	s, err := EncodeString("x")
	require.NoError(t, err)
	tests := []struct {
		r    SVG
		want error
	}{
		{SVG{MinWidth: 0, MinHeight: 10, Dark: "#000", Light: "#fff"}, ErrInvalidDimension},
		{SVG{MinWidth: 10, MinHeight: -1, Dark: "#000", Light: "#fff"}, ErrInvalidDimension},
		{SVG{MinWidth: 10, MinHeight: 10, QuietZone: -1, Dark: "#000", Light: "#fff"}, ErrInvalidOption},
		{SVG{MinWidth: 10, MinHeight: 10, Dark: "", Light: "#fff"}, ErrInvalidOption},
		{SVG{MinWidth: 10, MinHeight: 10, Dark: "#000", Light: `"/><script>`}, ErrInvalidOption},
	}
	for _, tt := range tests {
		out, err := tt.r.Render(s)
		assert.ErrorIs(t, err, tt.want, "%+v", tt.r)
		assert.Empty(t, out)
	}
}

type errWriter struct{}

var errWrite = errors.New("write failed")

func (errWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestEncodeSVG(t *testing.T) {
	s, err := EncodeString("writer")
	require.NoError(t, err)
	r := NewSVG(64, 64)
	var b bytes.Buffer
	require.NoError(t, r.Encode(&b, s))
	str, err := r.Render(s)
	require.NoError(t, err)
	assert.Equal(t, str, b.String())
	assert.ErrorIs(t, r.Encode(errWriter{}, s), errWrite)
}
