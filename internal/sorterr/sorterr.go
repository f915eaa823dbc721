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

// Package sorterr names the phase a distributed sort failed in. The
// original collective aborts the whole process on any of these failures —
// one rank failing means the whole sort has failed, there is no partial
// recovery — but a Go process should not call os.Exit on behalf of its
// caller, so this package turns that abort into a typed, returned error
// that still carries the same stable phase identifiers for diagnostics.
package sorterr

// Phase identifiers, stable across versions: they double as the public
// names instrumentation keys off.
const (
	MedianSelect = "Splitter_median_select"
	Partition    = "Splitter_partition"
	Exchange     = "Splitter_exchange"
	Merge        = "Splitter_merge"
	Split        = "Splitter_split"
	BaseCase     = "Splitter_baseCase"
	MoveToPow2   = "Splitter_move_to_pow_of_two"
	Shuffle      = "Splitter_shuffle"
	SortLocally  = "Splitter_sortLocally"
)

// Error reports which phase failed, on which rank of which group size, and
// why.
type Error struct {
	Phase string
	Rank  int
	Group int
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Phase
	}
	return e.Phase + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error for the given phase, annotated with the caller's
// position in its group.
func New(phase string, rank, group int, err error) *Error {
	return &Error{Phase: phase, Rank: rank, Group: group, Err: err}
}
