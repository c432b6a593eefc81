// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrsvg

import (
	"os"
	"strings"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unixdj/qrsvg/coding"
	"github.com/unixdj/qrsvg/internal/qrtest"
)

func TestHelloWorldGolden(t *testing.T) {
	want, err := os.ReadFile("testdata/hello_world_q.txt")
	require.NoError(t, err)
	s, err := EncodeString("HELLO WORLD", WithLevel(Q))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version())
	assert.Equal(t, Q, s.Level())
	assert.Equal(t, 21, s.Size())
	assert.Equal(t, 0, s.Mask())
	assert.Equal(t, string(want), s.String())

	r, err := qrtest.Decode(s.Matrix())
	require.NoError(t, err)
	assert.Equal(t, []coding.Segment{{Text: "HELLO WORLD", Mode: coding.Alphanumeric}}, r.Segments)
}

func TestHelloGolden(t *testing.T) {
	want, err := os.ReadFile("testdata/hello.txt")
	require.NoError(t, err)
	s, err := EncodeString("hello", WithMask(7))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version())
	assert.Equal(t, M, s.Level())
	assert.Equal(t, string(want), s.String())
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		text string
		opts []Option
	}{
		{"", nil},
		{"1", nil},
		{"hello", []Option{WithLevel(H)}},
		{"HTTPS://EXAMPLE.COM/0123456789012345678901234", nil},
		{"Mixed Case 12345 with ÜTF-8 ✓", []Option{WithLevel(L)}},
		{strings.Repeat("Lorem ipsum dolor sit amet, 0123456789. ", 30), []Option{WithLevel(Q)}},
		{strings.Repeat("9", 1000), []Option{WithMode(ModeNumeric)}},
		{"ABC DEF", []Option{WithMode(ModeAlphanumeric), WithVersion(5)}},
		{"0123", []Option{WithMode(ModeByte)}},
		{"点茗漢字", []Option{WithMode(ModeKanji), WithLevel(H)}},
		{"parallel", []Option{WithParallelMasks(), WithVersion(12)}},
	}
	for _, tt := range tests {
		s, err := EncodeString(tt.text, tt.opts...)
		require.NoError(t, err, "%.20q", tt.text)
		r, err := qrtest.Decode(s.Matrix())
		require.NoError(t, err, "%.20q", tt.text)
		assert.Equal(t, tt.text, string(r.Data))
		assert.Equal(t, s.Version(), int(r.Version))
		assert.Equal(t, s.Level(), r.Level)
		assert.Equal(t, s.Mask(), int(r.Mask))
	}
}

func TestDeterminism(t *testing.T) {
	for _, text := range []string{"1", "HELLO WORLD", "https://example.com/?q=qr+code"} {
		a, err := EncodeString(text)
		require.NoError(t, err)
		b, err := EncodeString(text)
		require.NoError(t, err)
		c, err := EncodeString(text, WithParallelMasks())
		require.NoError(t, err)
		assert.Equal(t, a.Matrix(), b.Matrix())
		assert.Equal(t, a.Mask(), b.Mask())
		assert.Equal(t, a.Matrix(), c.Matrix())
		assert.Equal(t, a.Penalty(), c.Penalty())
	}
}

func TestMaskOptimal(t *testing.T) {
	s, err := EncodeString("mask optimality", WithLevel(Q))
	require.NoError(t, err)
	for m := 0; m < int(coding.Masks); m++ {
		f, err := EncodeString("mask optimality", WithLevel(Q), WithMask(m))
		require.NoError(t, err)
		assert.Equal(t, m, f.Mask())
		assert.LessOrEqual(t, s.Penalty(), f.Penalty(), "mask %d", m)
		if f.Penalty() == s.Penalty() {
			assert.LessOrEqual(t, s.Mask(), m)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	text := strings.Repeat("The quick brown fox 0123456789 ", 8)
	prev := 0
	for l := L; l <= H; l++ {
		s, err := EncodeString(text, WithLevel(l))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.Version(), prev, "level %v", l)
		prev = s.Version()
	}
}

func TestCapacityBoundary(t *testing.T) {
	s, err := Encode([]byte(strings.Repeat("a", 2953)), WithLevel(L))
	require.NoError(t, err)
	assert.Equal(t, 40, s.Version())
	assert.Equal(t, 177, s.Size())

	_, err = Encode([]byte(strings.Repeat("a", 2954)), WithLevel(L))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CapacityExceeded, e.Kind)
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		text string
		opts []Option
		want error
	}{
		{"12a", []Option{WithMode(ModeNumeric)}, ErrInvalidCharacter},
		{"abc", []Option{WithMode(ModeAlphanumeric)}, ErrInvalidCharacter},
		{"abc", []Option{WithMode(ModeKanji)}, ErrInvalidCharacter},
		{"HELLO WORLD", []Option{WithLevel(H), WithVersion(1)}, ErrVersionTooSmall},
		{"x", []Option{WithLevel(Level(4))}, ErrInvalidOption},
		{"x", []Option{WithVersion(41)}, ErrInvalidOption},
		{"x", []Option{WithVersion(-1)}, ErrInvalidOption},
		{"x", []Option{WithMask(8)}, ErrInvalidOption},
		{"x", []Option{WithMode(Mode(7))}, ErrInvalidOption},
	}
	for _, tt := range tests {
		s, err := EncodeString(tt.text, tt.opts...)
		assert.ErrorIs(t, err, tt.want, "%q", tt.text)
		assert.Nil(t, s)
	}
}

func TestForcedVersion(t *testing.T) {
	s, err := EncodeString("HELLO WORLD", WithLevel(H), WithVersion(7))
	require.NoError(t, err)
	assert.Equal(t, 7, s.Version())
	assert.Equal(t, 45, s.Size())
	assert.Equal(t, coding.VersionInfo, s.Module(34, 0).Kind)
	assert.Equal(t, coding.Function, s.Module(0, 0).Kind)
	assert.True(t, s.Dark(0, 0))
	assert.False(t, s.Dark(-1, 0))
}

func TestParse(t *testing.T) {
	for i, name := range []string{"l", "M", "q", "H"} {
		l, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, Level(i), l)
	}
	_, err := ParseLevel("X")
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = ParseLevel("")
	assert.ErrorIs(t, err, ErrInvalidOption)

	for _, tt := range []struct {
		s    string
		want Mode
	}{
		{"auto", ModeAuto}, {"n", ModeNumeric}, {"Alphanumeric", ModeAlphanumeric},
		{"byte", ModeByte}, {"k", ModeKanji},
	} {
		m, err := ParseMode(tt.s)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m)
		assert.Equal(t, tt.want, must(ParseMode(m.String())))
	}
	_, err = ParseMode("binary")
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	_, err := EncodeString("HELLO 2024", WithLevel(Q))
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "encoded", e.Message)
	fields := e.ContextMap()
	assert.Equal(t, "1", fields["version"])
	assert.Equal(t, "Q", fields["level"])
	assert.Equal(t, []any{"alphanumeric"}, fields["segments"])

	SetLogger(nil)
	assert.NotNil(t, Logger())
}

// skip2Levels maps levels to go-qrcode recovery levels.
var skip2Levels = [4]qrcode.RecoveryLevel{
	L: qrcode.Low,
	M: qrcode.Medium,
	Q: qrcode.High,
	H: qrcode.Highest,
}

// Symbols of single byte segments agree with go-qrcode in version and,
// given the same mask, in every module.
func TestSkip2(t *testing.T) {
	for _, tt := range []struct {
		text string
		l    Level
	}{
		{"hello", M},
		{"hello, world!", L},
		{"qr_code~svg", Q},
		{strings.Repeat("abcdefghij", 15), M},
		{strings.Repeat("the_quick_brown_fox;", 20), H},
		{strings.Repeat("zyxwvutsrq", 80), L},
	} {
		q, err := qrcode.New(tt.text, skip2Levels[tt.l])
		require.NoError(t, err)
		q.DisableBorder = true
		bm := q.Bitmap()

		m := coding.NewMatrix(len(bm))
		for y, row := range bm {
			for x, dark := range row {
				m.Set(x, y, coding.Data, dark)
			}
		}
		r, err := qrtest.Decode(m)
		require.NoError(t, err)
		require.Equal(t, tt.text, string(r.Data))

		s, err := EncodeString(tt.text, WithLevel(tt.l), WithMask(int(r.Mask)))
		require.NoError(t, err)
		assert.Equal(t, q.VersionNumber, s.Version(), "%.20q", tt.text)
		require.Equal(t, len(bm), s.Size())
		for y, row := range bm {
			for x, dark := range row {
				require.Equal(t, dark, s.Dark(x, y),
					"%.20q at (%d, %d)", tt.text, x, y)
			}
		}
	}
}
