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

// Package strcmp holds the two total orders the sorter supports: plain
// lexicographic byte comparison, and an index-breaking variant used by the
// indexed (stable) sort mode.
package strcmp

import (
	"bytes"

	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

// Comparator orders a relative to b: -1 less, 0 equal, 1 greater. Implementations must be a total order over the Elems they are
// given.
type Comparator func(a, b Elem) int

// Elem is the value a comparator compares.
type Elem = stringbuffer.Elem

// Bytes compares two strings lexicographically on their bytes alone. Equal
// byte sequences compare equal regardless of origin index — this is the
// non-indexed, not-necessarily-stable comparator.
func Bytes(a, b Elem) int {
	return bytes.Compare(a.Bytes, b.Bytes)
}

// Indexed compares bytes first; ties are broken by ascending origin index,
// giving a total order that makes the sort stable end to end (spec P4).
func Indexed(a, b Elem) int {
	if c := bytes.Compare(a.Bytes, b.Bytes); c != 0 {
		return c
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}
