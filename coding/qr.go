// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level QR coding details: capacity
// tables, segment encoding, Reed-Solomon blocks, symbol layout and
// mask selection.
package coding // import "github.com/unixdj/qrsvg/coding"

import (
	"strconv"

	"golang.org/x/text/encoding/japanese"

	"github.com/unixdj/qrsvg/gf256"
)

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 modules on a side.
// Versions run from 1 to 40: the larger the version,
// the more information the code can store.
type Version int

// Code versions.
const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// IsValid reports whether v is a QR version.
func (v Version) IsValid() bool { return MinVersion <= v && v <= MaxVersion }

// QR version size classes.  The lengths of character count fields
// depend on the size class.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
	Classes       // number of size classes
)

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// ClassRange returns the lowest and highest version in size class c.
func ClassRange(c int) (lo, hi Version) {
	return [Classes]Version{1, 10, 27}[c], [Classes]Version{9, 26, 40}[c]
}

// Size returns the number of modules on a side of a version v code.
func (v Version) Size() int { return int(v)*4 + 17 }

// Bytes returns the total number of codewords in a version v code.
func (v Version) Bytes() int { return vtab[v].bytes }

// Blocks returns the number of error correction blocks and the
// number of check bytes per block at level l.
func (v Version) Blocks(l Level) (nblock, check int) {
	lev := vtab[v].level[l]
	return lev.nblock, lev.check
}

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	vt := &vtab[v]
	lev := vt.level[l]
	return vt.bytes - lev.nblock*lev.check
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int { return v.DataBytes(l) * 8 }

// Alignment returns the row and column coordinates of alignment
// pattern centres.  It returns nil for version 1.
func (v Version) Alignment() []int {
	return append([]int(nil), vtab[v].align...)
}

// VersionBits returns the 18 bit BCH(18,6) version information
// for v, or 0 below version 7.
func (v Version) VersionBits() uint32 { return vtab[v].pattern }

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if l.IsValid() {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// IsValid reports whether l is an error correction level.
func (l Level) IsValid() bool { return L <= l && l <= H }

// FormatBits returns the 15 bit format information for level l and
// mask m: the level's two bits and the mask number, BCH(15,5)
// protected and XORed with 0x5412.
func FormatBits(l Level, m Mask) uint16 { return ftab[l][m] }

// A version describes metadata associated with a version.
type version struct {
	bytes   int      // total number of codewords
	align   []int    // alignment pattern coordinates
	pattern uint32   // version information bits
	level   [4]level // block structure per level
}

type level struct {
	nblock int // number of blocks
	check  int // check bytes per block
}

// Bits is an append-only bit stream holding the encoded segments
// and, after AddCheckBytes, the padding and check bytes.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version and level.
func NewBits(v Version, l Level) *Bits {
	n := vtab[v].bytes
	if 1 < vtab[v].level[l].nblock {
		n <<= 1 // room for Permute
	}
	return &Bits{b: make([]byte, 0, n)}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits in b.
func (b *Bits) Bits() int { return b.nbit }

// Bytes returns the bits as bytes.  It panics unless the number of
// bits is a multiple of 8.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	return b.b
}

func (b *Bits) clone() *Bits {
	c := &Bits{b: make([]byte, len(b.b), cap(b.b)), nbit: b.nbit}
	copy(c.b, b.b)
	return c
}

func (b *Bits) growTo(n int) {
	if cap(b.b) < n {
		nb := make([]byte, len(b.b), n)
		copy(nb, b.b)
		b.b = nb
	}
}

// Add adds n bytes to b and returns the added slice.
func (b *Bits) Add(n int) []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	b.growTo(len(b.b) + n)
	start := len(b.b)
	b.b = b.b[:start+n]
	b.nbit = 8 * len(b.b)
	return b.b[start:]
}

// Write appends the low nbit bits of v to b, most significant first.
func (b *Bits) Write(v uint32, nbit int) {
	if nbit == 0 {
		return
	}
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// Pad bytes filling unused data capacity.
var padBytes = [2]byte{0xec, 0x11}

// pad appends up to 4 terminator bits, pads b to a byte boundary and
// fills it to n bytes with padBytes.
func (b *Bits) pad(n int) {
	b.nbit = min(b.nbit+4, n*8)
	for len(b.b)*8 < b.nbit {
		b.b = append(b.b, 0)
	}
	for i := 0; len(b.b) < n; i++ {
		b.b = append(b.b, padBytes[i&1])
	}
	b.nbit = len(b.b) * 8
}

// AddCheckBytes adds terminator, padding and check bytes to b for
// the given QR version and level.  The data is split into blocks,
// shorter blocks first, each followed in b by its check bytes.
func (b *Bits) AddCheckBytes(v Version, l Level) {
	nd := v.DataBytes(l)
	if b.nbit > nd*8 {
		panic("qr: too much data")
	}
	vt := &vtab[v]
	b.growTo(vt.bytes)
	b.pad(nd)

	dat := b.Bytes()
	lev := vt.level[l]
	db := nd / lev.nblock
	normal := (db+1)*lev.nblock - nd // number of short blocks
	rs := gf256.NewRSEncoder(Field, lev.check)
	for i := 0; i < lev.nblock; i++ {
		if i == normal {
			db++
		}
		rs.ECC(dat[:db], b.Add(lev.check))
		dat = dat[db:]
	}

	if len(b.Bytes()) != vt.bytes {
		panic("qr: internal error")
	}
}

// interleave interleaves nblock blocks from src to dst, which must be
// of equal length.  Blocks in src are laid out back to back, shorter
// blocks first, with lengths differing by at most one.  dst takes
// byte i of every block in turn, the extra bytes of longer blocks
// last.
func interleave(dst, src []byte, nblock int) {
	db := len(src) / nblock
	extra := dst[db*nblock:]
	dst = dst[:db*nblock]
	normal := nblock - len(extra)
	for i := 0; i < nblock; i++ {
		for j, v := range src[:db] {
			dst[j*nblock+i] = v
		}
		src = src[db:]
		if i >= normal {
			extra[i-normal] = src[0]
			src = src[1:]
		}
	}
}

// Permute returns a BitStream reading data and check bytes in b with
// blocks interleaved for the given QR code version and level: data
// bytes of all blocks, then check bytes of all blocks.
func (b *Bits) Permute(v Version, l Level) BitStream {
	vt := &vtab[v]
	src := b.Bytes()
	if len(src) != vt.bytes {
		panic("qr: wrong data length")
	}
	dst := src
	if nblock := vt.level[l].nblock; nblock != 1 {
		if cap(src) < len(src)*2 {
			dst = make([]byte, vt.bytes)
		} else {
			dst = src[len(src) : len(src)*2]
		}
		nd := v.DataBytes(l)
		interleave(dst[:nd], src[:nd], nblock)
		interleave(dst[nd:], src[nd:], nblock)
	}
	return NewBitStream(dst)
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Bytes returns the data underlying s.
func (s *BitStream) Bytes() []byte { return s.b }

// Next returns the next bit from s.
// Past end of buffer Next returns false.
func (s *BitStream) Next() bool {
	i := s.pos >> 3
	if i >= len(s.b) {
		return false
	}
	bit := s.b[i]>>(7&^s.pos)&1 != 0
	s.pos++
	return bit
}

// Predefined encoding modes.
const (
	Numeric       Mode = iota // numeric mode, ASCII digits
	Alphanumeric              // alphanumeric mode, ASCII subset
	Byte                      // byte mode, any data
	Kanji                     // kanji mode, UTF-8 text
	ShiftJISKanji             // kanji mode, Shift JIS text
	modes                     // number of modes
)

// A Mode is a QR segment encoding mode.
type Mode int8

// modeEncoder implements a QR segment encoding.
//
// Text modes other than Numeric, Alphanumeric, Byte and ShiftJISKanji
// have a Transform function returning a segment of one of those modes.
// The encoder transforms and validates the segment before encoding.
type modeEncoder struct {
	Name        string  // Name for error reporting
	Indicator   byte    // 4 bit mode indicator
	CountLength [3]byte // character count field length per size class

	// PayloadLength returns the encoded length in bits of n bytes
	// of valid text.  If nil, each byte is encoded as 8 bits.
	PayloadLength func(n int) int

	// Accepts reports whether the mode accepts byte c.
	// If nil, any byte is accepted.
	Accepts func(c byte) bool

	// Valid reports whether the string is valid for the mode.
	// If set, it is used instead of Accepts.
	Valid func(s string) bool

	// Transform returns a segment of another Mode with the string
	// transformed for encoding and a boolean indicating whether the
	// transform was successful.
	Transform func(s string) (Segment, bool)

	// Count returns the character count of the string.
	// If nil, the length of the string in bytes is used.
	Count func(s string) int

	// Encode3, Encode2 and Encode1 return the encoding of the bytes
	// and its length in bits.  The encoder calls a non-nil Encode{N}
	// repeatedly as long as N source bytes are available, in
	// descending order of N.  If all are nil, each byte is encoded as
	// 8 bits.
	Encode3 func([3]byte) (uint32, int)
	Encode2 func([2]byte) (uint32, int)
	Encode1 func(byte) (uint32, int)
}

// Alphanumeric mode character set, in encoding order.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// alphaIndex maps bytes to their alphanumeric mode value, or -1.
var alphaIndex = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = int8(i)
	}
	return t
}()

// IsNumeric reports whether c is encodable in numeric mode.
func IsNumeric(c byte) bool { return '0' <= c && c <= '9' }

// IsAlphanumeric reports whether c is encodable in alphanumeric mode.
func IsAlphanumeric(c byte) bool { return alphaIndex[c] >= 0 }

// isShiftJISKanji reports whether the big endian Shift JIS code c
// is in the QR kanji range.
func isShiftJISKanji(c uint16) bool {
	lo := c & 0xff
	return (0x8140 <= c && c <= 0x9ffc || 0xe040 <= c && c <= 0xebbf) &&
		0x40 <= lo && lo <= 0xfc && lo != 0x7f
}

var stdmodes = [modes]modeEncoder{
	Numeric: {
		Name:          "numeric",
		Indicator:     1,
		CountLength:   [3]byte{10, 12, 14},
		PayloadLength: func(n int) int { return (10*n + 2) / 3 },
		Accepts:       IsNumeric,
		Encode3: func(b [3]byte) (uint32, int) {
			return uint32(b[0]-'0')*100 + uint32(b[1]-'0')*10 +
				uint32(b[2]-'0'), 10
		},
		Encode2: func(b [2]byte) (uint32, int) {
			return uint32(b[0]-'0')*10 + uint32(b[1]-'0'), 7
		},
		Encode1: func(b byte) (uint32, int) {
			return uint32(b - '0'), 4
		},
	},
	Alphanumeric: {
		Name:          "alphanumeric",
		Indicator:     2,
		CountLength:   [3]byte{9, 11, 13},
		PayloadLength: func(n int) int { return (11*n + 1) / 2 },
		Accepts:       IsAlphanumeric,
		Encode2: func(b [2]byte) (uint32, int) {
			return uint32(alphaIndex[b[0]])*45 +
				uint32(alphaIndex[b[1]]), 11
		},
		Encode1: func(b byte) (uint32, int) {
			return uint32(alphaIndex[b]), 6
		},
	},
	Byte: {
		Name:        "byte",
		Indicator:   4,
		CountLength: [3]byte{8, 16, 16},
	},
	Kanji: {
		Name:        "kanji",
		Indicator:   8,
		CountLength: [3]byte{8, 10, 12},
		Transform: func(s string) (Segment, bool) {
			t, err := japanese.ShiftJIS.NewEncoder().String(s)
			return Segment{t, ShiftJISKanji}, err == nil
		},
	},
	ShiftJISKanji: {
		Name:          "shift-jis-kanji",
		Indicator:     8,
		CountLength:   [3]byte{8, 10, 12},
		PayloadLength: func(n int) int { return (n >> 1) * 13 },
		Count:         func(s string) int { return len(s) >> 1 },
		Valid: func(s string) bool {
			if len(s)&1 != 0 {
				return false
			}
			for i := 0; i < len(s); i += 2 {
				if !isShiftJISKanji(uint16(s[i])<<8 | uint16(s[i+1])) {
					return false
				}
			}
			return true
		},
		Encode2: func(b [2]byte) (uint32, int) {
			c := uint32(b[0])<<8 | uint32(b[1])
			if c <= 0x9ffc {
				c -= 0x8140
			} else {
				c -= 0xc140
			}
			return c>>8*0xc0 + c&0xff, 13
		},
	},
}

func getMode(mode Mode) *modeEncoder {
	if 0 <= mode && mode < modes {
		return &stdmodes[mode]
	}
	return nil
}

func (mode Mode) String() string {
	if m := getMode(mode); m != nil {
		return m.Name
	}
	return strconv.Itoa(int(mode))
}

// IsValid reports whether mode is a predefined Mode.
func (mode Mode) IsValid() bool { return getMode(mode) != nil }

// Header returns the length in bits of the mode indicator and
// character count field of a segment in mode at size class class.
func (mode Mode) Header(class int) int {
	if m := getMode(mode); m != nil {
		return 4 + int(m.CountLength[class])
	}
	return 0
}

// Length returns the length in bits of n bytes of valid text encoded
// in mode at the given size class, including the header.  Length
// returns 0 if mode is invalid or needs a transform.
func (mode Mode) Length(n, class int) int {
	m := getMode(mode)
	if m == nil || m.Transform != nil {
		return 0
	}
	return m.length(n, class)
}

func (m *modeEncoder) length(n, class int) int {
	l := 4 + int(m.CountLength[class])
	if f := m.PayloadLength; f != nil {
		return l + f(n)
	}
	return l + n*8
}

// A Segment describes a QR code segment.
type Segment struct {
	Text string // data to encode
	Mode Mode   // encoding mode
}

// isValid reports whether s is encodable by m.
func (m *modeEncoder) isValid(s string) bool {
	if f := m.Valid; f != nil {
		return f(s)
	}
	if is := m.Accepts; is != nil {
		for i := 0; i < len(s); i++ {
			if !is(s[i]) {
				return false
			}
		}
	}
	return true
}

// transform transforms and validates seg for encoding.
func (seg Segment) transform() (Segment, *modeEncoder, error) {
	m := getMode(seg.Mode)
	if m == nil {
		return Segment{}, nil, ErrMode
	}
	ts := seg
	if m.Transform != nil {
		var ok bool
		if ts, ok = m.Transform(seg.Text); !ok {
			return Segment{}, nil, SegmentError(seg)
		}
		if m = getMode(ts.Mode); m == nil || m.Transform != nil {
			panic("qr: internal error")
		}
	}
	if !m.isValid(ts.Text) {
		return Segment{}, nil, SegmentError(seg)
	}
	return ts, m, nil
}

// Check reports an error if seg is not encodable.
func (seg Segment) Check() error {
	_, _, err := seg.transform()
	return err
}

// EncodedLength returns the encoded length in bits of seg in the
// given QR version size class, or an error if seg is not encodable.
func (seg Segment) EncodedLength(class int) (int, error) {
	ts, m, err := seg.transform()
	if err != nil {
		return 0, err
	}
	return m.length(len(ts.Text), class), nil
}

// Encode writes seg encoded for the given QR version size class to b.
func (seg Segment) Encode(b *Bits, class int) error {
	ts, m, err := seg.transform()
	if err != nil {
		return err
	}
	s := ts.Text
	w := len(s)
	if m.Count != nil {
		w = m.Count(s)
	}
	if w >= 1<<m.CountLength[class] {
		return Errorf(InvalidVersionRequest,
			"%d %s characters exceed count field", w, m.Name)
	}
	b.Write(uint32(m.Indicator), 4)
	b.Write(uint32(w), int(m.CountLength[class]))

	enc3, enc2, enc1 := m.Encode3, m.Encode2, m.Encode1
	if enc3 == nil && enc2 == nil && enc1 == nil {
		b.growTo(len(b.b) + len(s) + 1)
		if b.nbit&7 == 0 {
			b.b = append(b.b, s...)
			b.nbit += len(s) * 8
			return nil
		}
		for i := 0; i < len(s); i++ {
			b.Write(uint32(s[i]), 8)
		}
		return nil
	}
	if enc3 != nil {
		for ; len(s) >= 3; s = s[3:] {
			b.Write(enc3([3]byte{s[0], s[1], s[2]}))
		}
	}
	if enc2 != nil {
		for ; len(s) >= 2; s = s[2:] {
			b.Write(enc2([2]byte{s[0], s[1]}))
		}
	}
	if enc1 != nil {
		for ; len(s) >= 1; s = s[1:] {
			b.Write(enc1(s[0]))
		}
	}
	if s != "" {
		panic("qr: " + m.Name + " mode internal error")
	}
	return nil
}
