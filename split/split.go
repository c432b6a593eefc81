// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package split splits data into QR code segments and finds the
smallest QR version holding them.
*/
package split // import "github.com/unixdj/qrsvg/split"

import (
	"math/bits"

	"github.com/unixdj/qrsvg/coding"
)

// A Data is data encodable in a QR code.
//
// Data is implemented by String, Segment, List and Null.
type Data interface {
	// MinLength returns the minimum theoretically possible encoded
	// length for the data.  The returned value doesn't have to be
	// accurate, but it MUST NOT be greater than any value returned
	// by the Splitter's Split method.
	MinLength() int

	// Splitter returns a Splitter for the data.
	Splitter() (Splitter, error)
}

// A Splitter splits data into QR code segments.
//
// Split splits data into segments for the given QR version size
// class and returns the Result and its encoded length in bits.
// Split may be called more than once.  The Result may use the same
// underlying data structure.
type Splitter interface {
	Split(class int) (Result, int)
}

// A Result is a result of a split returned by Splitter methods.
type Result interface {
	// Len returns the number of segments.
	Len() int

	// Append appends the segments to the slice.
	Append([]coding.Segment) []coding.Segment
}

// dataBits returns the data capacity in bits of the largest version
// in size class class at level l.
func dataBits(class int, l coding.Level) int {
	_, hi := coding.ClassRange(class)
	return hi.DataBits(l)
}

/*
Split returns segments and the minimum QR code version for data at
the given error correction level.  If data does not fit in a version
40 code at the level, Split returns an error matching
coding.ErrCapacityExceeded.

Using String(text) as data returns an optimal split of text into
numeric, alphanumeric and byte mode segments.
*/
func Split(data Data, level coding.Level) ([]coding.Segment, coding.Version, error) {
	if !level.IsValid() {
		return nil, 0, coding.ErrLevel
	}
	// Estimate minimum QR version size class.  This is done in a
	// very crude manner, as it's likely to be completely off anyway.
	n := data.MinLength()
	class := coding.Class0
	for dataBits(class, level) < n {
		if class++; class == coding.Classes {
			return nil, 0, capacityError(n, level)
		}
	}
	sp, err := data.Splitter()
	if err != nil {
		return nil, 0, err
	}

	// Split data into segments for the size class.
	r, n := sp.Split(class)
	// If data is too big for the size class, increment class
	// and resplit.  n will change, hence the loop.
	for dataBits(class, level) < n {
		for class++; class < coding.Classes && dataBits(class, level) < n; class++ {
		}
		if class == coding.Classes {
			return nil, 0, capacityError(n, level)
		}
		r, n = sp.Split(class)
	}

	// Find version in the size class.
	v, max := coding.ClassRange(class)
	for v < max {
		if mid := (v + max) / 2; mid.DataBits(level) < n {
			v = mid + 1
		} else {
			max = mid
		}
	}

	return r.Append(make([]coding.Segment, 0, r.Len())), v, nil
}

func capacityError(n int, l coding.Level) error {
	return coding.Errorf(coding.CapacityExceeded,
		"%d bits exceed %d-bit capacity of version 40-%v",
		n, coding.MaxVersion.DataBits(l), l)
}

// SplitVersion returns segments for data in a QR code of version v
// at the given error correction level.  If data does not fit,
// SplitVersion returns an error matching coding.ErrVersionTooSmall.
func SplitVersion(data Data, v coding.Version, level coding.Level) ([]coding.Segment, error) {
	if !v.IsValid() {
		return nil, coding.ErrVersion
	}
	if !level.IsValid() {
		return nil, coding.ErrLevel
	}
	sp, err := data.Splitter()
	if err != nil {
		return nil, err
	}
	r, n := sp.Split(v.SizeClass())
	if nd := v.DataBits(level); n > nd {
		return nil, coding.Errorf(coding.InvalidVersionRequest,
			"cannot encode %d bits into %d-bit code %v-%v", n, nd, v, level)
	}
	return r.Append(make([]coding.Segment, 0, r.Len())), nil
}

// Null represents no data.
// It implements Data, Splitter and Result.
type Null struct{}

func (Null) MinLength() int              { return 0 }
func (Null) Splitter() (Splitter, error) { return Null{}, nil }
func (Null) Split(int) (Result, int)     { return Null{}, 0 }

func (Null) Len() int                                   { return 0 }
func (Null) Append(a []coding.Segment) []coding.Segment { return a }

// List is a slice of Data that implements Data.
type List []Data

func (l List) MinLength() int {
	var n int
	for i := range l {
		n += l[i].MinLength()
	}
	return n
}

func (l List) Splitter() (Splitter, error) {
	sl := make(splitList, len(l))
	for i := range l {
		var err error
		if sl[i].Splitter, err = l[i].Splitter(); err != nil {
			return nil, err
		}
	}
	return sl, nil
}

// splitList is a Splitter containing Splitters and a Result
// containing Results.
type splitList []struct {
	Splitter
	Result
}

func (l splitList) Split(class int) (Result, int) {
	var n, nn int
	for i := range l {
		l[i].Result, nn = l[i].Splitter.Split(class)
		n += nn
	}
	return l, n
}

func (l splitList) Len() int {
	var n int
	for i := range l {
		n += l[i].Result.Len()
	}
	return n
}

func (l splitList) Append(a []coding.Segment) []coding.Segment {
	for i := range l {
		a = l[i].Result.Append(a)
	}
	return a
}

// Segment describes a QR code segment in a forced mode.
// It implements Data, Splitter and Result.
type Segment coding.Segment

// Splitter returns seg, or an error if seg is not encodable.
func (seg Segment) Splitter() (Splitter, error) {
	if err := coding.Segment(seg).Check(); err != nil {
		return nil, err
	}
	return seg, nil
}

func (seg Segment) Len() int { return 1 }

func (seg Segment) MinLength() int {
	return seg.Mode.Length(len(seg.Text), coding.Class0)
}

// Split returns seg and its encoded length at the given QR version
// size class.
func (seg Segment) Split(class int) (Result, int) {
	n, _ := coding.Segment(seg).EncodedLength(class)
	return seg, n
}

// Append appends seg to a.
func (seg Segment) Append(a []coding.Segment) []coding.Segment {
	return append(a, coding.Segment(seg))
}

// String is text split into numeric, alphanumeric and byte mode
// segments to minimise the encoded length.  It implements Data.
type String string

func (s String) MinLength() int {
	if s == "" {
		return 0
	}
	return coding.Numeric.Length(len(s), coding.Class0)
}

/*
strSplitter and its component types.

String.Splitter determines modes in which each byte in the string is
encodable and creates a slice of spans, each span describing a
substring of bytes encodable in the same modes.  To avoid multiple
allocations, the span structure contains an array of segments for the
modes.

strSplitter.Split creates a linked list of segments representing an
optimal split of the data.  A segment contains its mode, length in
bytes, total encoded length in bits of the string from this segment
to the end, and a link to the next segment.

The split is calculated by walking the spans backwards.  For each
span n, for each mode m, a segment (n,m) is created representing an
optimal split for the string from segment n to the end, starting with
mode m.

The segment (n,m) is created thusly.  For each mode mm in which span
n+1 is encodable, a segment (n,m,mm) linking to (n+1,mm) is created.
If m=mm, the segments are merged.  The encoded length is calculated,
and the total encoded length of the next segment is added to it.  Of
these segments, the one with the smallest total encoded length is
chosen as (n,m).

When the beginning of the span slice is reached, a segment (0,m) with
the smallest total encoded length for any m describes an optimal split
for the whole string.
*/
type (
	// segment describes a segment encoded in a certain mode.
	segment struct {
		mode    coding.Mode // encoding mode
		segdata             // lengths and pointer to next
	}

	// segdata is the mutable portion of segment.
	segdata struct {
		next *segment // link to next segment in the chain
		len  uint32   // length of string in bytes
		bits uint32   // encoded size of all segments in the chain
	}

	// span describes a span of bytes encodable in the same modes.
	span struct {
		len uint32     // length of string in bytes
		seg [3]segment // segments, mode -1 terminated
	}

	// strSplitter is a Splitter returned by String.Splitter
	// and a Result.
	strSplitter struct {
		s    string   // string
		sp   []span   // spans
		head *segment // optimal split for Result
	}
)

// Mode bits of a byte.
const (
	numMode   = 1 << iota // numeric
	alphaMode             // alphanumeric
	byteMode              // byte, always set

	modeBits = numMode | alphaMode | byteMode
)

// Modes for mode bits.
var modeList = [3]coding.Mode{coding.Numeric, coding.Alphanumeric, coding.Byte}

// classify returns the mode bits for c.
func classify(c byte) byte {
	switch {
	case coding.IsNumeric(c):
		return numMode | alphaMode | byteMode
	case coding.IsAlphanumeric(c):
		return alphaMode | byteMode
	}
	return byteMode
}

// Splitter returns a Splitter calculating an optimal split for s.
func (s String) Splitter() (Splitter, error) {
	if s == "" {
		return Null{}, nil
	}

	// Scan the string, count spans and the modes common to all.
	var (
		n      int
		old    byte
		common byte = modeBits
	)
	for i := 0; i < len(s); i++ {
		if m := classify(s[i]); m != old {
			n++
			common &= m
			old = m
		}
	}
	// Numeric is never longer than alphanumeric, nor alphanumeric
	// than byte.  If modes are common to all spans, mask modes
	// above the lowest common mode.
	mask := byte(modeBits) &^ (common ^ -common)

	// Populate spans.
	sp := make([]span, 0, n)
	old = 0
	for i := 0; i < len(s); i++ {
		v := classify(s[i]) & mask
		if v == 0 {
			panic("qr: internal error")
		}
		if v != old {
			old = v
			sp = append(sp, span{})
			seg := &sp[len(sp)-1].seg
			for j := range seg {
				if v == 0 {
					seg[j].mode = -1
					break
				}
				bit := v & -v
				v &^= bit
				seg[j].mode = modeList[bits.TrailingZeros8(bit)]
			}
		}
		sp[len(sp)-1].len++
	}

	return &strSplitter{s: string(s), sp: sp}, nil
}

const inf = 1 << 24 // excessive encoded length

func (d *segdata) setBits(mode coding.Mode, class int) {
	d.bits = uint32(min(mode.Length(int(d.len), class), inf))
	if d.next != nil {
		d.bits += d.next.bits
	}
}

// add adds v to the split before p, returning a pointer to the
// segment with the smallest encoded length.
func (v *span) add(p *span, class int) *segment {
	best := &v.seg[0]
	for j := range v.seg {
		seg := &v.seg[j]
		if seg.mode < 0 {
			break
		}
		seg.bits = inf
		// p.seg is an array, not a slice, so range works when p is nil
		for k := range p.seg {
			if k != 0 && p.seg[k].mode < 0 {
				break
			}
			c := segdata{len: v.len}
			var add uint32
			if p != nil {
				c.next = &p.seg[k]
				if seg.mode == c.next.mode {
					// Prefer merging on ties.
					c.len += c.next.len
					c.next = c.next.next
					add--
				}
			}
			c.setBits(seg.mode, class)
			if c.bits+add < seg.bits {
				seg.segdata = c
			}
			if p == nil {
				break
			}
		}
		if seg.bits < best.bits {
			best = seg
		}
	}
	return best
}

func (s *strSplitter) Split(class int) (Result, int) {
	// process spans in reverse order
	var head *segment
	var next *span
	for i := len(s.sp) - 1; i >= 0; i-- {
		head = s.sp[i].add(next, class)
		next = &s.sp[i]
	}
	s.head = head
	return s, int(head.bits)
}

func (s *strSplitter) Len() int {
	var n int
	for seg := s.head; seg != nil; seg = seg.next {
		n++
	}
	return n
}

func (s *strSplitter) Append(a []coding.Segment) []coding.Segment {
	for seg, s := s.head, s.s; seg != nil; seg = seg.next {
		a = append(a, coding.Segment{
			Text: s[:seg.len],
			Mode: seg.mode,
		})
		s = s[seg.len:]
	}
	return a
}
