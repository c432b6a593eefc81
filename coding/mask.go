// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"strconv"

	"golang.org/x/sync/errgroup"
)

// A Mask describes a mask that is applied to the QR
// code to avoid QR artifacts being interpreted as
// alignment and timing patterns (such as the squares
// in opposite corners).  Valid masks are integers from 0 to 7.
type Mask int

// AutoMask requests the mask with the lowest penalty.
const AutoMask Mask = -1

// Masks is the number of masks.
const Masks = 8

func (m Mask) String() string {
	if m == AutoMask {
		return "auto"
	}
	return strconv.Itoa(int(m))
}

// IsValid reports whether m is one of the eight masks.
func (m Mask) IsValid() bool { return 0 <= m && m < Masks }

// http://www.swetake.com/qr/qr5_en.html
var mfunc = [Masks]func(x, y int) bool{
	func(x, y int) bool { return (y+x)%2 == 0 },
	func(x, y int) bool { return y%2 == 0 },
	func(x, y int) bool { return x%3 == 0 },
	func(x, y int) bool { return (y+x)%3 == 0 },
	func(x, y int) bool { return (y/2+x/3)%2 == 0 },
	func(x, y int) bool { return y*x%2+y*x%3 == 0 },
	func(x, y int) bool { return (y*x%2+y*x%3)%2 == 0 },
	func(x, y int) bool { return (y*x%3+(y+x)%2)%2 == 0 },
}

/*
 * Masks:
 *
 * 0         1         2         3         4         5         6         7
 * #.#.#.#.  ########  #..#..#.  #..#..#.  ###...##  ########  ########  #.#.#.#.
 * .#.#.#.#  ........  #..#..#.  ..#..#..  ###...##  #.....#.  ###...##  ...###..
 * #.#.#.#.  ########  #..#..#.  .#..#..#  ...###..  #..#..#.  ##.##.##  #...###.
 * .#.#.#.#  ........  #..#..#.  #..#..#.  ...###..  #.#.#.#.  #.#.#.#.  .#.#.#.#
 * #.#.#.#.  ########  #..#..#.  ..#..#..  ###...##  #..#..#.  #.##.##.  ###...##
 * .#.#.#.#  ........  #..#..#.  .#..#..#  ###...##  #.....#.  #...###.  .###...#
 */

// Invert reports whether m inverts the module at column x, row y.
func (m Mask) Invert(x, y int) bool { return mfunc[m](x, y) }

// Finder-like sequences for the penalty: 1:1:3:1:1 dark:light
// pattern with 4 light modules on either side.
const (
	finderBefore = 0b0000_1011101
	finderAfter  = 0b1011101_0000
	finderMask   = 1<<11 - 1
)

// Penalty returns the mask penalty score of m: the sum of
// 3 + (n-5) for each run of n ≥ 5 same-colour modules in a row or
// column, 3 for each 2×2 same-colour block (overlapping blocks
// counted separately), 40 for each finder-like pattern preceded or
// followed by 4 light modules in a row or column (modules outside
// the symbol are light), and 10 for each full 5% step the dark
// module share deviates from 50%.
func Penalty(m *Matrix) int {
	siz := m.Size
	p := 0
	for i := 0; i < siz; i++ {
		p += linePenalty(m, i, true) + linePenalty(m, i, false)
	}

	// 2×2 blocks.
	for y := 1; y < siz; y++ {
		for x := 1; x < siz; x++ {
			c := m.Dark(x, y)
			if c == m.Dark(x-1, y) && c == m.Dark(x, y-1) &&
				c == m.Dark(x-1, y-1) {
				p += 3
			}
		}
	}

	// Balance.
	total := siz * siz
	dark := m.DarkCount()
	d := dark*20 - total*10
	if d < 0 {
		d = -d
	}
	return p + d/total*10
}

// linePenalty returns the run and finder-like penalty for row i,
// or for column i if row is false.
func linePenalty(m *Matrix, i int, row bool) int {
	siz := m.Size
	p := 0
	var (
		pat  uint16 // last 11 modules, most recent lowest
		last bool   // colour of current run
		run  int    // length of current run
	)
	// Walk 4 modules past the end, where modules are light.
	for k := 0; k < siz+4; k++ {
		var dark bool
		if k < siz {
			if row {
				dark = m.Dark(k, i)
			} else {
				dark = m.Dark(i, k)
			}
			if k > 0 && dark == last {
				run++
			} else {
				if run >= 5 {
					p += run - 2
				}
				last, run = dark, 1
			}
		}
		pat <<= 1
		if dark {
			pat |= 1
		}
		pat &= finderMask
		if pat == finderBefore || pat == finderAfter {
			p += 40
		}
	}
	if run >= 5 {
		p += run - 2
	}
	return p
}

// A Trial is a symbol with one mask applied and its penalty.
type Trial struct {
	Mask    Mask
	Penalty int
	Matrix  *Matrix
}

// Apply returns a copy of data, a matrix returned by Place, with
// mask applied to its data modules and format and version
// information for level l written.
func (p *Plan) Apply(data *Matrix, l Level, mask Mask) *Matrix {
	m := data.Clone()
	siz := m.Size
	f := mfunc[mask]
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			mod := &m.Modules[y*siz+x]
			if mod.Kind == Data && f(x, y) {
				mod.Dark = !mod.Dark
			}
		}
	}
	WriteFormat(m, FormatBits(l, mask))
	if pat := p.Version.VersionBits(); pat != 0 {
		WriteVersion(m, pat)
	}
	return m
}

func (p *Plan) trial(data *Matrix, l Level, mask Mask) Trial {
	m := p.Apply(data, l, mask)
	return Trial{Mask: mask, Penalty: Penalty(m), Matrix: m}
}

// Trials returns the eight candidate symbols for data at level l,
// indexed by mask.  If parallel is set, candidates are built and
// scored concurrently.
func (p *Plan) Trials(data *Matrix, l Level, parallel bool) [Masks]Trial {
	var t [Masks]Trial
	if !parallel {
		for i := range t {
			t[i] = p.trial(data, l, Mask(i))
		}
		return t
	}
	var g errgroup.Group
	for i := range t {
		i := i
		g.Go(func() error {
			t[i] = p.trial(data, l, Mask(i))
			return nil
		})
	}
	g.Wait()
	return t
}

// Best returns the trial with the lowest penalty, the one with the
// lowest mask on ties.
func Best(t []Trial) Trial {
	best := t[0]
	for _, c := range t[1:] {
		if c.Penalty < best.Penalty {
			best = c
		}
	}
	return best
}

// A Code is a square pixel grid.
type Code struct {
	Version Version
	Level   Level
	Mask    Mask
	Penalty int
	*Matrix
}

// Black returns true if the pixel at (x, y) is black.
// Pixels outside the code are white.
func (c *Code) Black(x, y int) bool { return c.Dark(x, y) }

// Encoder accumulates segments for a QR code of a given version
// and level and encodes them.
type Encoder struct {
	p        *Plan
	l        Level
	b        *Bits
	mask     Mask
	parallel bool
}

// NewEncoder returns an Encoder for QR codes of version v and level l.
func NewEncoder(v Version, l Level) (*Encoder, error) {
	if !l.IsValid() {
		return nil, ErrLevel
	}
	p, err := NewPlan(v)
	if err != nil {
		return nil, err
	}
	return &Encoder{p: p, l: l, b: NewBits(v, l), mask: AutoMask}, nil
}

// Version returns the version of codes produced by e.
func (e *Encoder) Version() Version { return e.p.Version }

// Level returns the error correction level of codes produced by e.
func (e *Encoder) Level() Level { return e.l }

// Reset discards the segments written to e.
func (e *Encoder) Reset() { e.b.Reset() }

// SetMask sets the mask to apply.  AutoMask selects the mask with
// the lowest penalty.
func (e *Encoder) SetMask(m Mask) error {
	if m != AutoMask && !m.IsValid() {
		return ErrMask
	}
	e.mask = m
	return nil
}

// SetParallel sets whether mask candidates are scored concurrently.
func (e *Encoder) SetParallel(parallel bool) { e.parallel = parallel }

// Bits returns the number of bits written to e.
func (e *Encoder) Bits() int { return e.b.Bits() }

// Write encodes and adds text segments.  On error nothing is added.
func (e *Encoder) Write(text ...Segment) error {
	class := e.p.Version.SizeClass()
	n := e.b.nbit
	for _, t := range text {
		if err := t.Encode(e.b, class); err != nil {
			e.b.truncate(n)
			return err
		}
	}
	return nil
}

// truncate shortens b to n bits.
func (b *Bits) truncate(n int) {
	b.b = b.b[:(n+7)>>3]
	if rem := n & 7; rem != 0 {
		b.b[len(b.b)-1] &^= 0xff >> rem
	}
	b.nbit = n
}

// Code returns a QR code with the written segments.  It does not
// modify e.
func (e *Encoder) Code() (*Code, error) {
	v, l := e.p.Version, e.l
	if n, nd := e.b.Bits(), v.DataBits(l); n > nd {
		return nil, Errorf(InvalidVersionRequest,
			"cannot encode %d bits into %d-bit code", n, nd)
	}

	b := e.b.clone()
	b.AddCheckBytes(v, l)
	data := e.p.Place(b.Permute(v, l))

	var t Trial
	if e.mask == AutoMask {
		trials := e.p.Trials(data, l, e.parallel)
		t = Best(trials[:])
	} else {
		t = e.p.trial(data, l, e.mask)
	}
	return &Code{
		Version: v,
		Level:   l,
		Mask:    t.Mask,
		Penalty: t.Penalty,
		Matrix:  t.Matrix,
	}, nil
}

// Encode resets e, writes text segments and returns the QR code.
func (e *Encoder) Encode(text ...Segment) (*Code, error) {
	e.Reset()
	if err := e.Write(text...); err != nil {
		return nil, err
	}
	return e.Code()
}

// Encode returns a QR code of version v and level l with text
// segments, masked with the lowest penalty mask.
func Encode(v Version, l Level, text ...Segment) (*Code, error) {
	e, err := NewEncoder(v, l)
	if err != nil {
		return nil, err
	}
	return e.Encode(text...)
}
