// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "strings"

// A Kind tells what a module of a symbol is used for.
type Kind uint8

// Module kinds.
const (
	Unset       Kind = iota // not yet assigned
	Function                // finder, separator, timing, alignment, dark module
	Data                    // data and check bits, remainder bits
	Format                  // format information
	VersionInfo             // version information
)

func (k Kind) String() string {
	switch k {
	case Unset:
		return "unset"
	case Function:
		return "function"
	case Data:
		return "data"
	case Format:
		return "format"
	case VersionInfo:
		return "version"
	}
	return "kind?"
}

// A Module is a single cell of a symbol.
type Module struct {
	Kind Kind
	Dark bool
}

// A Matrix is a square grid of modules, stored row by row.
// The module at column x, row y is Modules[y*Size+x].
type Matrix struct {
	Size    int
	Modules []Module
}

// NewMatrix returns a Matrix of size×size unset light modules.
func NewMatrix(size int) *Matrix {
	return &Matrix{Size: size, Modules: make([]Module, size*size)}
}

// In reports whether (x, y) is inside m.
func (m *Matrix) In(x, y int) bool {
	return 0 <= x && x < m.Size && 0 <= y && y < m.Size
}

// At returns the module at column x, row y.
// Outside m, At returns an unset light module.
func (m *Matrix) At(x, y int) Module {
	if !m.In(x, y) {
		return Module{}
	}
	return m.Modules[y*m.Size+x]
}

// Dark reports whether the module at column x, row y is dark.
// Modules outside m are light.
func (m *Matrix) Dark(x, y int) bool { return m.At(x, y).Dark }

// Set sets the module at column x, row y.
func (m *Matrix) Set(x, y int, k Kind, dark bool) {
	m.Modules[y*m.Size+x] = Module{k, dark}
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		Size:    m.Size,
		Modules: append([]Module(nil), m.Modules...),
	}
}

// Count returns the number of modules of kind k.
func (m *Matrix) Count(k Kind) int {
	n := 0
	for _, mod := range m.Modules {
		if mod.Kind == k {
			n++
		}
	}
	return n
}

// DarkCount returns the number of dark modules.
func (m *Matrix) DarkCount() int {
	n := 0
	for _, mod := range m.Modules {
		if mod.Dark {
			n++
		}
	}
	return n
}

// String returns m as text, one line per row, with '#' for
// dark modules and '.' for light ones.
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.Grow((m.Size + 1) * m.Size)
	for i, mod := range m.Modules {
		if mod.Dark {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		if (i+1)%m.Size == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
