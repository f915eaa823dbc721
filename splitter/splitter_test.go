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

package splitter

import (
	"math/rand"
	"testing"

	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/stretchr/testify/require"
)

func elemsOf(strs ...string) []strcmp.Elem {
	out := make([]strcmp.Elem, len(strs))
	for i, s := range strs {
		out[i] = strcmp.Elem{Bytes: []byte(s)}
	}
	return out
}

func TestLocateRobustOddLengthStaysWithinBounds(t *testing.T) {
	// |v| odd means opt's last bit is randomized (spec 4.E); both outcomes
	// must still land within [lowerBound, upperBound] and honor robust
	// mode's pull toward the middle.
	v := elemsOf("a", "a", "a", "a", "b", "b", "b", "b", "b")
	pivot := strcmp.Elem{Bytes: []byte("b")}
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		var bits bitstore.Store
		idx := Locate(v, pivot, strcmp.Bytes, true, rng, &bits)
		require.GreaterOrEqual(t, idx, 4)
		require.LessOrEqual(t, idx, 5)
	}
}

func TestLocateNonRobustReturnsLowerBound(t *testing.T) {
	v := elemsOf("a", "a", "b", "b", "c")
	pivot := strcmp.Elem{Bytes: []byte("b")}
	rng := rand.New(rand.NewSource(1))
	var bits bitstore.Store
	idx := Locate(v, pivot, strcmp.Bytes, false, rng, &bits)
	require.Equal(t, 2, idx)
}

func TestLocateRobustSpreadsHeavyDuplicates(t *testing.T) {
	v := elemsOf("eq", "eq", "eq", "eq", "eq", "eq", "eq", "eq")
	pivot := strcmp.Elem{Bytes: []byte("eq")}
	rng := rand.New(rand.NewSource(1))
	var bits bitstore.Store
	idx := Locate(v, pivot, strcmp.Bytes, true, rng, &bits)
	require.Equal(t, 4, idx)
}
