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
	"time"

	"go.uber.org/zap"
)

// Tracker is the purely observational per-phase timing collaborator. It is
// never consulted for control flow; every implementation, including
// DummyTracker, must tolerate being called on every phase of every
// recursion level.
type Tracker interface {
	Phase(name string, level int, d time.Duration)
}

// DummyTracker discards every measurement; it is the default when a
// caller does not supply one.
type DummyTracker struct{}

func (DummyTracker) Phase(string, int, time.Duration) {}

// timePhase runs fn, reporting its wall-clock duration to t, and logs phase
// entry/exit at Debug on logger — the logging spec 3 describes for every
// named phase of the recursion.
func timePhase(t Tracker, logger *zap.SugaredLogger, rank int, name string, level int, fn func()) {
	logger.Debugw("phase enter", "phase", name, "level", level, "rank", rank)
	start := time.Now()
	fn()
	d := time.Since(start)
	logger.Debugw("phase exit", "phase", name, "level", level, "rank", rank, "duration", d)
	t.Phase(name, level, d)
}
