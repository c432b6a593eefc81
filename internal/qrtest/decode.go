// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qrtest reads QR code matrices back for tests.
//
// The reader handles error free symbols only: it finds no errors, it
// reports them.
package qrtest

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/japanese"

	"github.com/unixdj/qrsvg/coding"
	"github.com/unixdj/qrsvg/gf256"
)

// A Result is a decoded symbol.
type Result struct {
	Version  coding.Version
	Level    coding.Level
	Mask     coding.Mask
	Segments []coding.Segment // Kanji segments hold UTF-8 text
	Data     []byte           // concatenated segment text
}

var (
	errSize   = errors.New("qrtest: invalid symbol size")
	errFormat = errors.New("qrtest: invalid format information")
	errCheck  = errors.New("qrtest: check bytes mismatch")
	errShort  = errors.New("qrtest: truncated segment")
)

// Decode reads the symbol in m.
func Decode(m *coding.Matrix) (*Result, error) {
	if m.Size < 21 || (m.Size-17)%4 != 0 {
		return nil, errSize
	}
	v := coding.Version((m.Size - 17) / 4)
	if !v.IsValid() {
		return nil, errSize
	}
	l, mask, err := readFormat(m)
	if err != nil {
		return nil, err
	}
	if v >= 7 {
		if got := readVersion(m); got != v.VersionBits() {
			return nil, fmt.Errorf("qrtest: version information %#x, want %#x",
				got, v.VersionBits())
		}
	}
	p, err := coding.NewPlan(v)
	if err != nil {
		return nil, err
	}
	raw := readData(m, p.Template(), mask, v.Bytes())
	data, err := deinterleave(raw, v, l)
	if err != nil {
		return nil, err
	}
	segs, err := parse(data, v.SizeClass())
	if err != nil {
		return nil, err
	}
	r := &Result{Version: v, Level: l, Mask: mask, Segments: segs}
	var b bytes.Buffer
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	r.Data = b.Bytes()
	return r, nil
}

// readFormat returns the level and mask from the format information
// around the top left finder, checking the other copy against it.
func readFormat(m *coding.Matrix) (coding.Level, coding.Mask, error) {
	var f1, f2 uint16
	siz := m.Size
	for i := 0; i < 15; i++ {
		var x, y int
		switch {
		case i < 6:
			x, y = 8, i
		case i < 8:
			x, y = 8, i+1
		case i == 8:
			x, y = 7, 8
		default:
			x, y = 14-i, 8
		}
		if m.Dark(x, y) {
			f1 |= 1 << i
		}
		if i < 8 {
			x, y = siz-1-i, 8
		} else {
			x, y = 8, siz-15+i
		}
		if m.Dark(x, y) {
			f2 |= 1 << i
		}
	}
	if f1 != f2 {
		return 0, 0, errFormat
	}
	for l := coding.L; l <= coding.H; l++ {
		for mask := coding.Mask(0); mask < coding.Masks; mask++ {
			if coding.FormatBits(l, mask) == f1 {
				return l, mask, nil
			}
		}
	}
	return 0, 0, errFormat
}

// readVersion returns the version information bits below the top
// right finder.
func readVersion(m *coding.Matrix) uint32 {
	var v uint32
	for i := 0; i < 18; i++ {
		if m.Dark(m.Size-11+i%3, i/3) {
			v |= 1 << i
		}
	}
	return v
}

// readData returns n bytes read from the data modules of m, unmasked,
// in placement order.  Data modules are the unset modules of tmpl.
func readData(m, tmpl *coding.Matrix, mask coding.Mask, n int) []byte {
	b := make([]byte, n)
	pos := 0
	siz := m.Size
	up := true
	for x := siz - 1; x > 0; x -= 2 {
		if x == 6 {
			x--
		}
		for i := 0; i < siz; i++ {
			y := i
			if up {
				y = siz - 1 - i
			}
			for _, xx := range [2]int{x, x - 1} {
				if tmpl.At(xx, y).Kind != coding.Unset {
					continue
				}
				if pos < n*8 && m.Dark(xx, y) != mask.Invert(xx, y) {
					b[pos>>3] |= 0x80 >> (pos & 7)
				}
				pos++
			}
		}
		up = !up
	}
	return b
}

// deinterleave splits raw into blocks, verifies the check bytes of
// each and returns the data bytes.
func deinterleave(raw []byte, v coding.Version, l coding.Level) ([]byte, error) {
	nblock, check := v.Blocks(l)
	nd := v.DataBytes(l)
	db := nd / nblock
	normal := nblock - nd%nblock // short blocks
	blocks := make([][]byte, nblock)
	for i := range blocks {
		n := db
		if i >= normal {
			n++
		}
		blocks[i] = make([]byte, 0, n+check)
	}

	k := 0
	for j := 0; j <= db; j++ {
		for i := range blocks {
			if j < cap(blocks[i])-check {
				blocks[i] = append(blocks[i], raw[k])
				k++
			}
		}
	}
	for j := 0; j < check; j++ {
		for i := range blocks {
			blocks[i] = append(blocks[i], raw[k])
			k++
		}
	}

	rs := gf256.NewRSEncoder(coding.Field, check)
	want := make([]byte, check)
	data := make([]byte, 0, nd)
	for i, b := range blocks {
		n := len(b) - check
		rs.ECC(b[:n], want)
		if !bytes.Equal(want, b[n:]) {
			return nil, fmt.Errorf("%w in block %d", errCheck, i)
		}
		data = append(data, b[:n]...)
	}
	return data, nil
}

// bitReader reads big endian bit fields.
type bitReader struct {
	b   []byte
	pos int
}

func (r *bitReader) left() int { return len(r.b)*8 - r.pos }

func (r *bitReader) read(n int) int {
	v := 0
	for ; n > 0; n-- {
		v = v<<1 | int(r.b[r.pos>>3]>>(7&^r.pos)&1)
		r.pos++
	}
	return v
}

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// countBits is the character count field length per mode indicator
// and size class.
var countBits = map[int][3]int{
	1: {10, 12, 14},
	2: {9, 11, 13},
	4: {8, 16, 16},
	8: {8, 10, 12},
}

// parse returns the segments in data up to the terminator.
func parse(data []byte, class int) ([]coding.Segment, error) {
	r := &bitReader{b: data}
	segs := []coding.Segment{}
	for r.left() >= 4 {
		ind := r.read(4)
		if ind == 0 {
			break
		}
		cb, ok := countBits[ind]
		if !ok {
			return nil, fmt.Errorf("qrtest: unknown mode indicator %d", ind)
		}
		if r.left() < cb[class] {
			return nil, errShort
		}
		n := r.read(cb[class])
		seg, err := parseSegment(r, ind, n)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func parseSegment(r *bitReader, ind, n int) (coding.Segment, error) {
	var (
		b    []byte
		mode coding.Mode
	)
	switch ind {
	case 1:
		mode = coding.Numeric
		for ; n > 0; n -= 3 {
			k, w := min(n, 3), [4]int{0, 4, 7, 10}[min(n, 3)]
			if r.left() < w {
				return coding.Segment{}, errShort
			}
			v := r.read(w)
			b = fmt.Appendf(b, "%0*d", k, v)
		}
	case 2:
		mode = coding.Alphanumeric
		for ; n > 1; n -= 2 {
			if r.left() < 11 {
				return coding.Segment{}, errShort
			}
			v := r.read(11)
			b = append(b, alphabet[v/45], alphabet[v%45])
		}
		if n == 1 {
			if r.left() < 6 {
				return coding.Segment{}, errShort
			}
			b = append(b, alphabet[r.read(6)])
		}
	case 4:
		mode = coding.Byte
		if r.left() < n*8 {
			return coding.Segment{}, errShort
		}
		for ; n > 0; n-- {
			b = append(b, byte(r.read(8)))
		}
	case 8:
		mode = coding.Kanji
		if r.left() < n*13 {
			return coding.Segment{}, errShort
		}
		var sjis []byte
		for ; n > 0; n-- {
			v := r.read(13)
			c := v/0xc0<<8 | v%0xc0
			if c < 0x1f00 {
				c += 0x8140
			} else {
				c += 0xc140
			}
			sjis = append(sjis, byte(c>>8), byte(c))
		}
		var err error
		if b, err = japanese.ShiftJIS.NewDecoder().Bytes(sjis); err != nil {
			return coding.Segment{}, err
		}
	}
	return coding.Segment{Text: string(b), Mode: mode}, nil
}
