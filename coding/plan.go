// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "sync"

// A Plan describes how to construct a QR code of a specific version.
// It holds the function pattern template shared by all codes of the
// version.  A Plan is immutable and safe for concurrent use.
type Plan struct {
	Version Version
	Size    int

	tmpl *Matrix
}

var plans [MaxVersion + 1]struct {
	once sync.Once
	p    *Plan
}

// NewPlan returns a Plan for a QR code with the given version.
func NewPlan(v Version) (*Plan, error) {
	if !v.IsValid() {
		return nil, ErrVersion
	}
	p := &plans[v]
	p.once.Do(func() { p.p = vplan(v) })
	return p.p, nil
}

// Template returns a copy of the function pattern template:
// every module is either Unset, to be filled with data, or
// reserved with its final Kind.  Format and version information
// modules are reserved light.
func (p *Plan) Template() *Matrix { return p.tmpl.Clone() }

func vplan(v Version) *Plan {
	siz := v.Size()
	m := NewMatrix(siz)

	// Finder patterns with separators.
	for _, c := range [][2]int{{0, 0}, {siz - 7, 0}, {0, siz - 7}} {
		finder(m, c[0], c[1])
	}

	// Timing patterns.
	for i := 8; i < siz-8; i++ {
		m.Set(i, 6, Function, i&1 == 0)
		m.Set(6, i, Function, i&1 == 0)
	}

	// Alignment patterns, except where they would overlap finders.
	align := vtab[v].align
	last := len(align) - 1
	for i, y := range align {
		for j, x := range align {
			if i == 0 && (j == 0 || j == last) || i == last && j == 0 {
				continue
			}
			alignment(m, x, y)
		}
	}

	// Format information and the dark module.
	for i := 0; i < 9; i++ {
		reserve(m, i, 8, Format)
		reserve(m, 8, i, Format)
	}
	for i := 0; i < 8; i++ {
		reserve(m, siz-1-i, 8, Format)
		reserve(m, 8, siz-1-i, Format)
	}
	m.Set(8, siz-8, Function, true)

	// Version information.
	if v >= 7 {
		for i := 0; i < 18; i++ {
			a, b := siz-11+i%3, i/3
			reserve(m, a, b, VersionInfo)
			reserve(m, b, a, VersionInfo)
		}
	}

	return &Plan{Version: v, Size: siz, tmpl: m}
}

// finder draws a finder pattern with its top left corner at (x, y)
// and the light separator around it, clipped to the symbol.
func finder(m *Matrix, x, y int) {
	for dy := -1; dy <= 7; dy++ {
		for dx := -1; dx <= 7; dx++ {
			if !m.In(x+dx, y+dy) {
				continue
			}
			d := max(abs(dx-3), abs(dy-3))
			m.Set(x+dx, y+dy, Function, d != 2 && d != 4)
		}
	}
}

// alignment draws a 5×5 alignment pattern centred at (x, y).
func alignment(m *Matrix, x, y int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.Set(x+dx, y+dy, Function, max(abs(dx), abs(dy)) != 1)
		}
	}
}

// reserve sets an unset module at (x, y) to kind k.
func reserve(m *Matrix, x, y int, k Kind) {
	if m.At(x, y).Kind == Unset {
		m.Set(x, y, k, false)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Place returns a new matrix with the bits from s placed in the data
// modules of the template.  Starting at the bottom right corner,
// bits fill two-module-wide columns moving up, then down, and so on
// leftwards, skipping the vertical timing pattern.  Data modules past
// the end of s are light remainder bits.
func (p *Plan) Place(s BitStream) *Matrix {
	m := p.Template()
	siz := p.Size
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
				if m.At(xx, y).Kind == Unset {
					m.Set(xx, y, Data, s.Next())
				}
			}
		}
		up = !up
	}
	return m
}

// WriteFormat writes the format information bits f to m in both
// copies, least significant bit first.
func WriteFormat(m *Matrix, f uint16) {
	siz := m.Size
	for i := 0; i < 15; i++ {
		dark := f>>i&1 != 0
		// Around the top left finder.
		switch {
		case i < 6:
			m.Set(8, i, Format, dark)
		case i < 8:
			m.Set(8, i+1, Format, dark)
		case i == 8:
			m.Set(7, 8, Format, dark)
		default:
			m.Set(14-i, 8, Format, dark)
		}
		// Split between the other two finders.
		if i < 8 {
			m.Set(siz-1-i, 8, Format, dark)
		} else {
			m.Set(8, siz-15+i, Format, dark)
		}
	}
}

// WriteVersion writes the 18 version information bits v to m in
// both copies, least significant bit first.
func WriteVersion(m *Matrix, v uint32) {
	siz := m.Size
	for i := 0; i < 18; i++ {
		dark := v>>i&1 != 0
		a, b := siz-11+i%3, i/3
		m.Set(a, b, VersionInfo, dark)
		m.Set(b, a, VersionInfo, dark)
	}
}
