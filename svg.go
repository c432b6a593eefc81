// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrsvg

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/unixdj/qrsvg/coding"
)

// An SVG renders Symbols as SVG images.
//
// The image is at least MinWidth by MinHeight pixels and surrounds the
// symbol with QuietZone light modules on each side.  Modules are drawn
// as rectangles of a whole number of pixels, and the module width and
// height are chosen independently as the smallest ones reaching the
// minimum dimensions.
type SVG struct {
	MinWidth  int    // minimum image width in pixels
	MinHeight int    // minimum image height in pixels
	QuietZone int    // quiet zone width in modules
	Dark      string // fill colour of dark modules
	Light     string // fill colour of the background
}

// NewSVG returns an SVG renderer producing images of at least w by h
// pixels with a quiet zone of 4 modules, black on white.
func NewSVG(w, h int) *SVG {
	return &SVG{
		MinWidth:  w,
		MinHeight: h,
		QuietZone: 4,
		Dark:      "#000",
		Light:     "#fff",
	}
}

func (r *SVG) check() error {
	if r.MinWidth <= 0 || r.MinHeight <= 0 {
		return coding.Errorf(coding.InvalidDimension,
			"invalid image dimensions %dx%d", r.MinWidth, r.MinHeight)
	}
	if r.QuietZone < 0 {
		return coding.Errorf(coding.InvalidOption,
			"invalid quiet zone %d", r.QuietZone)
	}
	for _, c := range [2]string{r.Dark, r.Light} {
		if c == "" || strings.ContainsAny(c, `<>"&'`) {
			return coding.Errorf(coding.InvalidOption, "invalid colour %q", c)
		}
	}
	return nil
}

// unit returns the size of a module in pixels for an image of at
// least min pixels spanning n modules.
func unit(min, n int) int {
	u := max(1, min/n)
	if u*n < min {
		u++
	}
	return u
}

// Size returns the image width and height in pixels for s.
func (r *SVG) Size(s *Symbol) (w, h int) {
	n := s.Size() + r.QuietZone*2
	return unit(r.MinWidth, n) * n, unit(r.MinHeight, n) * n
}

// Render returns an SVG image displaying s.
func (r *SVG) Render(s *Symbol) (string, error) {
	var b strings.Builder
	if err := r.Encode(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode writes an SVG image displaying s to w.
//
// The image consists of a background rectangle and a single path with
// one rectangle per dark module, in rows from top to bottom and left
// to right within a row.
func (r *SVG) Encode(w io.Writer, s *Symbol) error {
	if err := r.check(); err != nil {
		return err
	}
	b := bufio.NewWriter(w)
	siz := s.Size()
	bord := r.QuietZone
	n := siz + bord*2
	uw, uh := unit(r.MinWidth, n), unit(r.MinHeight, n)
	ws, hs := strconv.Itoa(uw*n), strconv.Itoa(uh*n)
	b.WriteString(`<?xml version="1.0" standalone="yes"?>` +
		`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="` +
		ws + `" height="` + hs + `" viewBox="0 0 ` + ws + " " + hs +
		`" shape-rendering="crispEdges">` +
		`<rect x="0" y="0" width="` + ws + `" height="` + hs +
		`" fill="` + r.Light + `"/><path fill="` + r.Dark + `" d="`)

	// Each rectangle is "M{x} {y}h{w}v{h}H{x}V{y}".
	var (
		buf    []byte
		hv     = "h" + strconv.Itoa(uw) + "v" + strconv.Itoa(uh) + "H"
		xs, ys = make([]string, siz), make([]string, siz)
	)
	for i := 0; i < siz; i++ {
		xs[i] = strconv.Itoa((i + bord) * uw)
		ys[i] = strconv.Itoa((i + bord) * uh)
	}
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			if !s.Dark(x, y) {
				continue
			}
			buf = append(buf[:0], 'M')
			buf = append(buf, xs[x]...)
			buf = append(buf, ' ')
			buf = append(buf, ys[y]...)
			buf = append(buf, hv...)
			buf = append(buf, xs[x]...)
			buf = append(buf, 'V')
			buf = append(buf, ys[y]...)
			b.Write(buf)
		}
	}
	b.WriteString(`"/></svg>`)
	return b.Flush()
}

// Render returns an SVG image displaying s, black on white, at least
// minWidth by minHeight pixels, with a quiet zone of quietZone modules.
func Render(s *Symbol, minWidth, minHeight, quietZone int) (string, error) {
	r := NewSVG(minWidth, minHeight)
	r.QuietZone = quietZone
	return r.Render(s)
}
