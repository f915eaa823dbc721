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

package radix

import (
	"math/rand"
	"testing"

	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/stretchr/testify/require"
)

func randomStrings(rng *rand.Rand, n, maxLen int) []strcmp.Elem {
	alphabet := []byte("abc")
	out := make([]strcmp.Elem, n)
	for i := range out {
		l := rng.Intn(maxLen + 1)
		b := make([]byte, l)
		for j := range b {
			b[j] = alphabet[rng.Intn(len(alphabet))]
		}
		out[i] = strcmp.Elem{Bytes: b, Index: uint64(i)}
	}
	return out
}

func requireSortedBytes(t *testing.T, elems []strcmp.Elem) {
	t.Helper()
	for i := 1; i < len(elems); i++ {
		require.LessOrEqual(t, strcmp.Bytes(elems[i-1], elems[i]), 0)
	}
}

func TestSortSmallBelowCutoff(t *testing.T) {
	elems := []strcmp.Elem{
		{Bytes: []byte("banana")},
		{Bytes: []byte("apple")},
		{Bytes: []byte("cherry")},
	}
	Sort(elems, strcmp.Bytes)
	requireSortedBytes(t, elems)
	require.Equal(t, "apple", string(elems[0].Bytes))
}

func TestSortLargeRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	elems := randomStrings(rng, 5000, 6)
	Sort(elems, strcmp.Bytes)
	requireSortedBytes(t, elems)
}

func TestSortPreservesMultiset(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	elems := randomStrings(rng, 500, 4)
	before := make(map[string]int)
	for _, e := range elems {
		before[string(e.Bytes)]++
	}
	Sort(elems, strcmp.Bytes)
	after := make(map[string]int)
	for _, e := range elems {
		after[string(e.Bytes)]++
	}
	require.Equal(t, before, after)
}

func TestLCPZeroAtStartAndMatchesCommonPrefix(t *testing.T) {
	elems := []strcmp.Elem{
		{Bytes: []byte("apple")},
		{Bytes: []byte("applesauce")},
		{Bytes: []byte("banana")},
	}
	lcp := LCP(elems)
	require.Equal(t, []int{0, 5, 0}, lcp)
}
