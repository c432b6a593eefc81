// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qrsvg/coding"
	"github.com/unixdj/qrsvg/internal/qrtest"
)

// Every version and level reads back, filled to capacity with a
// numeric segment following a byte segment.
func TestRoundTrip(t *testing.T) {
	for v := coding.MinVersion; v <= coding.MaxVersion; v++ {
		class := v.SizeClass()
		for l := coding.L; l <= coding.H; l++ {
			head := coding.Segment{Text: "v" + v.String() + "-" + l.String(), Mode: coding.Byte}
			n, err := head.EncodedLength(class)
			require.NoError(t, err)
			free := v.DataBits(l) - n - coding.Numeric.Header(class)
			digits := free / 10 * 3
			switch free % 10 {
			case 4, 5, 6:
				digits++
			case 7, 8, 9:
				digits += 2
			}
			tail := coding.Segment{Text: strings.Repeat("7", digits), Mode: coding.Numeric}

			e, err := coding.NewEncoder(v, l)
			require.NoError(t, err)
			require.NoError(t, e.SetMask(coding.Mask(int(v)%8)))
			c, err := e.Encode(head, tail)
			require.NoError(t, err, "%v-%v", v, l)
			assert.LessOrEqual(t, v.DataBits(l)-e.Bits(), 3, "%v-%v", v, l)

			r, err := qrtest.Decode(c.Matrix)
			require.NoError(t, err, "%v-%v", v, l)
			assert.Equal(t, []coding.Segment{head, tail}, r.Segments, "%v-%v", v, l)
			assert.Equal(t, c.Mask, r.Mask)
			assert.Zero(t, c.Count(coding.Unset), "%v-%v", v, l)
		}
	}
}
