// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// config holds defaults from the environment.  Flags override them.
type config struct {
	Level     string `env:"QRSVG_LEVEL" envDefault:"m"`
	Mode      string `env:"QRSVG_MODE" envDefault:"auto"`
	Size      int    `env:"QRSVG_SIZE" envDefault:"200"`
	QuietZone int    `env:"QRSVG_QUIET_ZONE" envDefault:"4"`
	Dark      rgba   `env:"QRSVG_DARK" envDefault:"black"`
	Light     rgba   `env:"QRSVG_LIGHT" envDefault:"white"`
	Workers   int    `env:"QRSVG_WORKERS" envDefault:"4"`
	Debug     bool   `env:"QRSVG_DEBUG" envDefault:"false"`
}

// loadConfig loads variables from the given .env files, if they
// exist, without overriding the environment, and parses the
// environment into a config.
func loadConfig(files ...string) (*config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	c, err := env.ParseAs[config]()
	if err != nil {
		return nil, err
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return &c, nil
}
