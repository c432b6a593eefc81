// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var qrField = NewField(0x11d, 2)

func TestFieldArithmetic(t *testing.T) {
	f := qrField
	assert.Equal(t, byte(1), f.Exp(0))
	assert.Equal(t, byte(2), f.Exp(1))
	assert.Equal(t, byte(0x1d), f.Exp(8))
	assert.Equal(t, f.Exp(3), f.Exp(258))
	assert.Equal(t, byte(0), f.Exp(-1))
	assert.Equal(t, -1, f.Log(0))

	for x := 1; x < 256; x++ {
		b := byte(x)
		require.Equal(t, b, f.Exp(f.Log(b)), "exp(log(%d))", x)
		require.Equal(t, byte(1), f.Mul(b, f.Inv(b)), "%d * inv", x)
		require.Equal(t, byte(0), f.Mul(b, 0))
		require.Equal(t, byte(0), f.Add(b, b))
		require.Equal(t, byte(mul(x, 7, 0x11d)), f.Mul(b, 7))
	}
	assert.Equal(t, byte(0), f.Inv(0))
}

func TestNewFieldPanics(t *testing.T) {
	assert.Panics(t, func() { NewField(0x100, 2) }, "reducible")
	assert.Panics(t, func() { NewField(0x11b, 1) }, "bad generator")
	assert.Panics(t, func() { NewField(0x200, 2) })
	assert.NotPanics(t, func() { NewField(0x11b, 3) })
}

func TestGen(t *testing.T) {
	// Generator polynomials for 7 and 10 check bytes,
	// as logarithms of the coefficients.
	tests := []struct {
		e    int
		lgen []int
	}{
		{7, []int{0, 87, 229, 146, 149, 238, 102, 21}},
		{10, []int{0, 251, 67, 46, 61, 118, 70, 64, 94, 32, 45}},
	}
	for _, tt := range tests {
		gen := qrField.Gen(tt.e)
		require.Len(t, gen, tt.e+1)
		for i, lg := range tt.lgen {
			assert.Equal(t, qrField.Exp(lg), gen[i], "degree %d coefficient %d", tt.e, i)
		}
	}
	assert.Panics(t, func() { qrField.Gen(0) })
	assert.Panics(t, func() { qrField.Gen(MaxCheck + 1) })
}

func TestGenRoots(t *testing.T) {
	// α^0 .. α^(e-1) are the roots of the degree e generator.
	for _, e := range []int{1, 2, 13, 22, 30, 68} {
		gen := qrField.Gen(e)
		for i := 0; i < e; i++ {
			x := qrField.Exp(i)
			var v byte
			for _, c := range gen {
				v = qrField.Mul(v, x) ^ c
			}
			assert.Zero(t, v, "degree %d root α^%d", e, i)
		}
	}
}

func TestECC(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		check []byte
	}{
		{
			// "HELLO WORLD", version 1-M.
			name:  "1-M",
			data:  []byte{32, 91, 11, 120, 209, 114, 220, 77, 67, 64, 236, 17, 236, 17, 236, 17},
			check: []byte{196, 35, 39, 119, 235, 215, 231, 226, 93, 23},
		},
		{
			// "HELLO WORLD", version 1-Q.
			name:  "1-Q",
			data:  []byte{32, 91, 11, 120, 209, 114, 220, 77, 67, 64, 236, 17, 236},
			check: []byte{168, 72, 22, 82, 217, 54, 156, 0, 46, 15, 180, 122, 16},
		},
		{
			name:  "zero",
			data:  make([]byte, 9),
			check: make([]byte, 17),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRSEncoder(qrField, len(tt.check))
			check := make([]byte, len(tt.check))
			rs.ECC(tt.data, check)
			assert.Equal(t, tt.check, check)

			// Reuse of the scratch buffer gives the same result.
			clear(check)
			rs.ECC(tt.data, check)
			assert.Equal(t, tt.check, check)
		})
	}
}

func TestECCShortCheck(t *testing.T) {
	rs := NewRSEncoder(qrField, 10)
	assert.Panics(t, func() { rs.ECC([]byte{1, 2, 3}, make([]byte, 9)) })
}

func TestConcurrentGen(t *testing.T) {
	f := NewField(0x11d, 2)
	var wg sync.WaitGroup
	res := make([][]byte, 16)
	for i := range res {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			res[i] = f.Gen(26)
		}()
	}
	wg.Wait()
	for _, g := range res {
		assert.Equal(t, res[0], g)
	}
}
