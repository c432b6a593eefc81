// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qrsvg/coding"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		v    coding.Version
		l    coding.Level
		segs []coding.Segment
	}{
		{1, coding.Q, []coding.Segment{{Text: "HELLO WORLD", Mode: coding.Alphanumeric}}},
		{1, coding.M, []coding.Segment{{Text: "01234567", Mode: coding.Numeric}}},
		{1, coding.H, []coding.Segment{{Text: "点茗", Mode: coding.Kanji}}},
		{2, coding.L, []coding.Segment{
			{Text: "abc", Mode: coding.Byte},
			{Text: "12345", Mode: coding.Numeric},
			{Text: "X", Mode: coding.Alphanumeric},
		}},
		{7, coding.M, []coding.Segment{{Text: "hello world, this is version seven", Mode: coding.Byte}}},
		{10, coding.H, []coding.Segment{{Text: "1234567890", Mode: coding.Numeric}}},
		{27, coding.Q, []coding.Segment{{Text: "ABC", Mode: coding.Alphanumeric}}},
	}
	for _, tt := range tests {
		c, err := coding.Encode(tt.v, tt.l, tt.segs...)
		require.NoError(t, err)
		r, err := Decode(c.Matrix)
		require.NoError(t, err, "%v-%v", tt.v, tt.l)
		assert.Equal(t, tt.v, r.Version)
		assert.Equal(t, tt.l, r.Level)
		assert.Equal(t, c.Mask, r.Mask)
		assert.Equal(t, tt.segs, r.Segments)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(coding.NewMatrix(22))
	assert.ErrorIs(t, err, errSize)

	c, err := coding.Encode(1, coding.L, coding.Segment{Text: "x", Mode: coding.Byte})
	require.NoError(t, err)

	// Flip a data module.
	m := c.Clone()
	m.Set(20, 20, coding.Data, !m.Dark(20, 20))
	_, err = Decode(m)
	assert.ErrorIs(t, err, errCheck)

	// Damage one copy of the format information.
	m = c.Clone()
	m.Set(8, 0, coding.Format, !m.Dark(8, 0))
	_, err = Decode(m)
	assert.ErrorIs(t, err, errFormat)
}
