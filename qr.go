// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qrsvg encodes QR codes and renders them as SVG.

Encode classifies the input into numeric, alphanumeric and byte mode
segments, picks the smallest version holding them at the requested
error correction level, adds Reed-Solomon check bytes, lays out the
symbol and applies the mask with the lowest penalty.  An SVG renders
the resulting Symbol.
*/
package qrsvg // import "github.com/unixdj/qrsvg"

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/unixdj/qrsvg/coding"
	"github.com/unixdj/qrsvg/split"
)

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level = coding.Level

const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

// ParseLevel returns the level named by s, one of "L", "M", "Q" or
// "H" in either case.
func ParseLevel(s string) (Level, error) {
	if len(s) == 1 {
		if i := strings.IndexByte("LMQH", s[0]&^0x20); i >= 0 {
			return Level(i), nil
		}
	}
	return 0, coding.Errorf(coding.InvalidOption, "invalid level %q", s)
}

// A Mode selects how input is encoded.
type Mode int

// Input modes.
const (
	ModeAuto         Mode = iota // optimal mix of numeric, alphanumeric and byte
	ModeNumeric                  // numeric only, digits 0-9
	ModeAlphanumeric             // alphanumeric only, 0-9 A-Z space $%*+-./:
	ModeByte                     // byte only
	ModeKanji                    // kanji only, UTF-8 text of JIS X 0208 kanji
	modes
)

var modeNames = [modes]string{"auto", "numeric", "alphanumeric", "byte", "kanji"}

// Segment modes for forced Modes.
var segMode = [modes]coding.Mode{
	ModeNumeric:      coding.Numeric,
	ModeAlphanumeric: coding.Alphanumeric,
	ModeByte:         coding.Byte,
	ModeKanji:        coding.Kanji,
}

func (m Mode) String() string {
	if 0 <= m && m < modes {
		return modeNames[m]
	}
	return "mode " + strconv.Itoa(int(m))
}

// ParseMode returns the Mode named by s: "auto", "numeric",
// "alphanumeric", "byte" or "kanji", or their first letter.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(s)
	for i, name := range modeNames {
		if s == name || len(s) == 1 && s[0] == name[0] {
			return Mode(i), nil
		}
	}
	return 0, coding.Errorf(coding.InvalidOption, "invalid mode %q", s)
}

type options struct {
	level    Level
	version  coding.Version // 0: smallest
	mode     Mode
	mask     coding.Mask
	parallel bool
}

// An Option configures Encode.
type Option func(*options) error

// WithLevel sets the error correction level.  The default is M.
func WithLevel(l Level) Option {
	return func(o *options) error {
		if !l.IsValid() {
			return coding.ErrLevel
		}
		o.level = l
		return nil
	}
}

// WithVersion forces QR version v, 1 to 40.  Version 0 selects the
// smallest version holding the data, which is the default.
func WithVersion(v int) Option {
	return func(o *options) error {
		if v != 0 && !coding.Version(v).IsValid() {
			return coding.ErrVersion
		}
		o.version = coding.Version(v)
		return nil
	}
}

// WithMode sets the input mode.  The default is ModeAuto.
func WithMode(m Mode) Option {
	return func(o *options) error {
		if m < 0 || m >= modes {
			return coding.ErrMode
		}
		o.mode = m
		return nil
	}
}

// WithMask forces mask m, 0 to 7, instead of the one with the lowest
// penalty.  -1 restores the default.
func WithMask(m int) Option {
	return func(o *options) error {
		if mm := coding.Mask(m); mm != coding.AutoMask && !mm.IsValid() {
			return coding.ErrMask
		}
		o.mask = coding.Mask(m)
		return nil
	}
}

// WithParallelMasks scores the eight mask candidates concurrently.
// The result is the same.
func WithParallelMasks() Option {
	return func(o *options) error {
		o.parallel = true
		return nil
	}
}

// Encode returns a QR symbol encoding data.
// All errors are reported before layout starts.
func Encode(data []byte, opts ...Option) (*Symbol, error) {
	o := options{level: M, mask: coding.AutoMask}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	text := string(data)
	var d split.Data = split.String(text)
	if o.mode != ModeAuto {
		d = split.Segment{Text: text, Mode: segMode[o.mode]}
	}
	var (
		segs []coding.Segment
		v    = o.version
		err  error
	)
	if v == 0 {
		segs, v, err = split.Split(d, o.level)
	} else {
		segs, err = split.SplitVersion(d, v, o.level)
	}
	if err != nil {
		return nil, err
	}

	e, err := coding.NewEncoder(v, o.level)
	if err != nil {
		return nil, err
	}
	if err := e.SetMask(o.mask); err != nil {
		return nil, err
	}
	e.SetParallel(o.parallel)
	c, err := e.Encode(segs...)
	if err != nil {
		return nil, err
	}

	if log := Logger(); log.Core().Enabled(zap.DebugLevel) {
		ms := make([]coding.Mode, len(segs))
		for i := range segs {
			ms[i] = segs[i].Mode
		}
		log.Debug("encoded",
			zap.Int("bytes", len(data)),
			zap.Stringer("version", c.Version),
			zap.Stringer("level", c.Level),
			zap.Stringers("segments", ms),
			zap.Int("mask", int(c.Mask)),
			zap.Int("penalty", c.Penalty))
	}
	return &Symbol{c: c}, nil
}

// EncodeString is like Encode with text as data.
func EncodeString(text string, opts ...Option) (*Symbol, error) {
	return Encode([]byte(text), opts...)
}

// A Symbol is an encoded QR code.  A Symbol is immutable.
type Symbol struct {
	c *coding.Code
}

// Version returns the QR version of s.
func (s *Symbol) Version() int { return int(s.c.Version) }

// Level returns the error correction level of s.
func (s *Symbol) Level() Level { return s.c.Level }

// Mask returns the mask applied to s.
func (s *Symbol) Mask() int { return int(s.c.Mask) }

// Penalty returns the mask penalty score of s.
func (s *Symbol) Penalty() int { return s.c.Penalty }

// Size returns the number of modules on a side of s.
func (s *Symbol) Size() int { return s.c.Size }

// Dark reports whether the module at column x, row y is dark.
// Modules outside the symbol are light.
func (s *Symbol) Dark(x, y int) bool { return s.c.Dark(x, y) }

// Module returns the module at column x, row y.
func (s *Symbol) Module(x, y int) coding.Module { return s.c.At(x, y) }

// Matrix returns a copy of the module matrix of s.
func (s *Symbol) Matrix() *coding.Matrix { return s.c.Clone() }

// String returns s as text, one line per row, with '#' for dark
// modules and '.' for light ones.
func (s *Symbol) String() string { return s.c.String() }
