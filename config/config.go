// Copyright 2024 The Distributed String Sorting Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the driver-level knobs that are policy, not
// algorithm: capacity factors, worker pool sizing, and the defaults for
// flags the core exposes as rquick.Option. It is read once at process
// startup from an explicit TOML file or reader — never from environment
// variables, matching the no-environment-state rule the core itself
// follows.
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/bingmann/distributed-string-sorting/internal/logutil"
	"github.com/bingmann/distributed-string-sorting/rquick"
	"github.com/panjf2000/ants/v2"
)

// Config is the driver-level configuration, decoded from TOML.
type Config struct {
	// Robust enables LocateSplitter's tie-breaking mode by default.
	Robust bool `toml:"robust"`
	// Shuffle enables the butterfly shuffle pre-pass by default.
	Shuffle bool `toml:"shuffle"`
	// TagBase is the default message tag base handed to Sort.
	TagBase int `toml:"tag_base"`
	// MergeWorkers bounds the ants pool used by ParallelMerge; 0 or 1
	// disables the parallel path and falls back to the serial merge.
	MergeWorkers int `toml:"merge_workers"`
	// FoldCapacityFactor and ExileCapacityFactor carry the 2x/3x
	// preallocation factors for after FoldToPow2. Nothing in this module
	// reads them; they are not passed on by Options.
	FoldCapacityFactor  float64 `toml:"fold_capacity_factor"`
	ExileCapacityFactor float64 `toml:"exile_capacity_factor"`
	// CompressExchange turns on lz4 framing for PairwiseExchange's byte
	// stream.
	CompressExchange bool `toml:"compress_exchange"`
	// LogLevel is passed straight to internal/logutil.New.
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration the driver uses when no file is
// supplied.
func Default() Config {
	return Config{
		Robust:              true,
		Shuffle:             false,
		TagBase:             0,
		MergeWorkers:        4,
		FoldCapacityFactor:  2.0,
		ExileCapacityFactor: 3.0,
		CompressExchange:    false,
		LogLevel:            "info",
	}
}

// Load decodes a Config from r, starting from Default so an incomplete
// file only overrides the fields it mentions.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Load(f)
}

// Options turns a Config into the rquick.Options a driver passes to Sort.
// TagBase is not among them: Sort takes it as a direct parameter, not an
// option, since it is per-call state rather than a sort-wide policy.
func (c Config) Options() ([]rquick.Option, error) {
	opts := []rquick.Option{
		rquick.WithRobust(c.Robust),
		rquick.WithShuffle(c.Shuffle),
	}
	if c.CompressExchange {
		opts = append(opts, rquick.WithCompressedExchange())
	}
	if c.MergeWorkers > 1 {
		pool, err := ants.NewPool(c.MergeWorkers)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rquick.WithPool(pool, c.MergeWorkers))
	}
	logger, err := logutil.New(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts = append(opts, rquick.WithLogger(logger))
	return opts, nil
}
