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

package rquick

import (
	"github.com/bingmann/distributed-string-sorting/exchange"
	"github.com/bingmann/distributed-string-sorting/internal/logutil"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

type settings struct {
	robust       bool
	shuffle      bool
	tracker      Tracker
	logger       *zap.SugaredLogger
	pool         *ants.Pool
	mergeWorkers int
	exchangeOpts []exchange.Option
	indexed      bool // stamped by the driver from data.Indices, not an Option
}

func defaultSettings() settings {
	return settings{
		robust:       true,
		shuffle:      false,
		tracker:      DummyTracker{},
		logger:       logutil.Nop(),
		mergeWorkers: 1,
	}
}

// Option configures one call to Sort.
type Option func(*settings)

// WithRobust toggles splitter.Locate's tie-breaking mode (default true).
func WithRobust(robust bool) Option {
	return func(s *settings) { s.robust = robust }
}

// WithShuffle enables the butterfly shuffle pre-pass (default false).
func WithShuffle(shuffle bool) Option {
	return func(s *settings) { s.shuffle = shuffle }
}

// WithTracker installs a per-phase timing observer.
func WithTracker(t Tracker) Option {
	return func(s *settings) {
		if t != nil {
			s.tracker = t
		}
	}
}

// WithLogger installs a structured logger; nil is ignored.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPool supplies an ants worker pool and the degree of parallelism
// ParallelMerge should target; a nil pool or workers < 2
// disables the parallel merge path.
func WithPool(pool *ants.Pool, workers int) Option {
	return func(s *settings) {
		s.pool = pool
		s.mergeWorkers = workers
	}
}

// WithCompressedExchange enables lz4 framing of PairwiseExchange's byte
// stream.
func WithCompressedExchange() Option {
	return func(s *settings) {
		s.exchangeOpts = append(s.exchangeOpts, exchange.WithCompression())
	}
}
