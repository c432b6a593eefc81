// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pborman/getopt/v2"
)

type rgba struct {
	R, G, B, A uint8
}

var (
	black = rgba{0x00, 0x00, 0x00, 0xff}
	white = rgba{0xff, 0xff, 0xff, 0xff}
)

// Colour names.
var rgb = map[string]rgba{
	"black":       black,
	"white":       white,
	"transparent": {},
	"red":         {0xff, 0x00, 0x00, 0xff},
	"green":       {0x00, 0x80, 0x00, 0xff},
	"blue":        {0x00, 0x00, 0xff, 0xff},
	"navy":        {0x00, 0x00, 0x80, 0xff},
	"maroon":      {0x80, 0x00, 0x00, 0xff},
	"gray":        {0x80, 0x80, 0x80, 0xff},
	"grey":        {0x80, 0x80, 0x80, 0xff},
}

func (c *rgba) String() string {
	if *c == black {
		return "black"
	} else if *c == white {
		return "white"
	} else if c.A == 0xff {
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
	} else {
		return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
}

// SVG returns c as an SVG fill colour.
func (c rgba) SVG() string {
	switch {
	case c == black:
		return "#000"
	case c == white:
		return "#fff"
	case c.A == 0xff:
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// parse sets c from a colour name or 3, 4, 6 or 8 hex digits with
// an optional leading '#'.
func (c *rgba) parse(s string) error {
	var ok bool
	if *c, ok = rgb[strings.ToLower(strings.ReplaceAll(s, " ", ""))]; ok {
		return nil
	}
	h := strings.TrimPrefix(s, "#")
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return fmt.Errorf("%q: bad colour spec", s)
	}
	switch len(h) {
	case 3:
		n = n<<4 | 0xf
		fallthrough
	case 4:
		var nn uint64
		for i := 0; i < 4; i++ {
			nn <<= 8
			nn |= n >> 12 & 0xf * 0x11
			n <<= 4
		}
		n = nn
	case 6:
		n = n<<8 | 0xff
	case 8:
	default:
		return fmt.Errorf("%q: bad colour spec", s)
	}
	c.R, c.G, c.B, c.A = uint8(n>>24), uint8(n>>16), uint8(n>>8), uint8(n)
	return nil
}

// Set implements getopt.Value.
func (c *rgba) Set(s string, _ getopt.Option) error { return c.parse(s) }

// UnmarshalText implements encoding.TextUnmarshaler for environment
// and manifest values.
func (c *rgba) UnmarshalText(b []byte) error { return c.parse(string(b)) }
