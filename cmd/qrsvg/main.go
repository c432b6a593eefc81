// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command qrsvg writes QR codes as SVG images.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unixdj/qrsvg"
)

var g = struct {
	job                 // symbol settings
	fn      string      // output filename
	batch   string      // manifest filename
	workers int         // batch workers
	debug   bool        // debug logging
	fg, bg  rgba        // colours
	log     *zap.Logger // logger
}{}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	prog := cl.Program()
	ul := make([]string, 1, 4)
	ul[0] = cl.UsageLine() + " [string ...]"
	ml := max(70-len("Usage: ")-1-len(prog), 0)
	for i := 0; len(ul[i]) > ml; i++ {
		s := ul[i]
		n := ml - 1
		for n > 0 && (s[n] != ' ' || s[n+1] != '[') {
			n--
		}
		ul = append(ul, s[n+1:])
		ul[i] = s[:max(n, 0)]
		ml = 60
	}
	fmt.Fprint(w, "QR code SVG generator\nUsage: ", prog, " ",
		strings.Join(ul, "\n          "), `
If no string is given, data is read from standard input and the final
newline is stripped.  Defaults are read from QRSVG_* environment
variables and a .env file in the current directory.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	w.Write(b.Bytes())
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qrsvg version 0.1.0
Copyright (c) 2024 Vadim Vygonets`)
	os.Exit(0)
}

// setDefaults sets the global settings from c.
func setDefaults(c *config) {
	g.Level = c.Level
	g.Mode = c.Mode
	g.Mask = -1
	g.Size = c.Size
	g.QuietZone = c.QuietZone
	g.fg, g.bg = c.Dark, c.Light
	g.workers = c.Workers
	g.debug = c.Debug
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.FlagLong(&g.bg, "background", 'B', `background colour; see -F`,
		"RGB[A]|name")
	getopt.FlagLong(&g.fg, "foreground", 'F', `foreground colour `+
		`as 3, 4, 6 or 8 hex digits or a basic colour name`, "RGB[A]|name")
	getopt.FlagLong(&g.Level, "level", 'l',
		"error correction level, lowest to highest", "l|m|q|h")
	getopt.FlagLong(&g.Mode, "mode", 'M', `encoding mode: `+
		`auto, numeric, alphanumeric, byte or kanji`, "mode")
	getopt.FlagLong(&g.Version, "version", 'v',
		"QR code version, 1 to 40; 0 for the smallest that fits", "ver")
	getopt.FlagLong(&g.Mask, "mask", 'p',
		"mask pattern, 0 to 7; -1 for the lowest penalty", "mask")
	getopt.FlagLong(&g.Size, "size", 's', "minimum image size in pixels",
		"pixels")
	getopt.FlagLong(&g.QuietZone, "margin", 'm', "quiet zone in modules",
		"margin")
	getopt.FlagLong(&g.fn, "output", 'o',
		`output file, or "-" for standard output`, "file")
	getopt.FlagLong(&g.batch, "batch", 'b', `render the codes listed `+
		`in a YAML manifest; string arguments are ignored`, "file")
	getopt.FlagLong(&g.workers, "jobs", 'n',
		"number of codes rendered at a time with -b", "n")
	getopt.FlagLong(&g.Parallel, "parallel", 'j',
		"score mask patterns concurrently")
	getopt.FlagLong(&g.debug, "debug", 'd', "log encoding details")

	getopt.Parse()
	if g.fn == "-" {
		g.fn = ""
	}
	g.Dark, g.Light = g.fg.SVG(), g.bg.SVG()
	g.Output = g.fn
	g.workers = max(g.workers, 1)
}

// newLogger returns a console logger writing to standard error.
func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func fatal(msg string, err error) {
	g.log.Error(msg, zap.Error(err))
	g.log.Sync()
	os.Exit(1)
}

func main() {
	c, err := loadConfig(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "qrsvg:", err)
		os.Exit(1)
	}
	setDefaults(c)
	parseFlags()
	g.log = newLogger(g.debug)
	qrsvg.SetLogger(g.log)
	defer g.log.Sync()

	if g.batch != "" {
		jobs, err := loadManifest(g.batch, g.job)
		if err != nil {
			fatal("cannot load manifest", err)
		}
		if err := runBatch(context.Background(), jobs, g.workers); err != nil {
			fatal("batch failed", err)
		}
		return
	}

	if args := getopt.Args(); len(args) != 0 {
		g.Text = strings.Join(args, " ")
	} else if isatty.IsTerminal(os.Stdin.Fd()) {
		usage()
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, os.Stdin); err != nil {
			fatal("cannot read input", err)
		}
		g.Text, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}
	if err := write(os.Stdout, &g.job); err != nil {
		fatal("cannot write symbol", err)
	}
}

// write writes the symbol for j to j.Output, or to w if j.Output is
// empty.
func write(w io.Writer, j *job) error {
	if j.Output != "" {
		return j.run()
	}
	opts, err := j.options()
	if err != nil {
		return err
	}
	r, err := j.renderer()
	if err != nil {
		return err
	}
	s, err := qrsvg.EncodeString(j.Text, opts...)
	if err != nil {
		return err
	}
	return r.Encode(w, s)
}
