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

// Package splitter locates the index at which a locally sorted run is cut
// around a pivot, with an optional tie-breaking mode that spreads runs of
// elements equal to the pivot across both halves to bound imbalance on
// degenerate (heavy-duplicate) inputs.
package splitter

import (
	"math/rand"
	"sort"

	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/strcmp"
)

// Locate returns the split index of v around pivot: elements [0, idx) sort
// strictly before pivot (or not, in robust mode — see below); elements
// [idx, len(v)) sort at or after it.
//
// Non-robust mode returns the lower bound L of pivot in v. Robust mode
// additionally computes the upper bound U and the index opt nearest the
// midpoint |v|/2 (randomly rounding when |v| is odd, via bits), and pulls
// the split toward opt whenever the plain lower bound falls short of it —
// spreading a long run of pivot-equal elements across both halves instead
// of dumping it all on one side.
func Locate(v []strcmp.Elem, pivot strcmp.Elem, cmp strcmp.Comparator, robust bool, rng *rand.Rand, bits *bitstore.Store) int {
	lo := sort.Search(len(v), func(i int) bool { return cmp(v[i], pivot) >= 0 })
	if !robust {
		return lo
	}
	hi := sort.Search(len(v), func(i int) bool { return cmp(v[i], pivot) > 0 })
	opt := len(v) / 2
	if len(v)%2 != 0 && bits.Next(rng) == 1 {
		opt++
	}
	if lo < opt {
		if opt < hi {
			return opt
		}
		return hi
	}
	return lo
}
