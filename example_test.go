// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrsvg_test

import (
	"fmt"
	"log"
	"os"

	"github.com/unixdj/qrsvg"
)

func ExampleEncodeString() {
	s, err := qrsvg.EncodeString("HELLO WORLD", qrsvg.WithLevel(qrsvg.Q))
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(s.Version(), s.Level(), s.Size(), s.Mask())
	// Output:
	// 1 Q 21 0
}

func ExampleSVG_Encode() {
	s, err := qrsvg.EncodeString("https://example.com/")
	if err != nil {
		log.Fatalln(err)
	}
	r := qrsvg.NewSVG(256, 256)
	r.Dark = "#1a237e"
	if err := r.Encode(os.Stdout, s); err != nil {
		log.Fatalln(err)
	}
}
