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

package dedupe

import (
	"testing"

	"github.com/bingmann/distributed-string-sorting/radix"
	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/stretchr/testify/require"
)

func TestBreakOrdersEqualRunByIndex(t *testing.T) {
	// spec S4: rank0 [("k",7),("k",3)], rank1 [("k",1),("k",5)] merged and
	// locally sorted gives one run of four equal "k" strings that must end
	// up ordered 1,3,5,7 by index.
	sorted := []strcmp.Elem{
		{Bytes: []byte("k"), Index: 7},
		{Bytes: []byte("k"), Index: 3},
		{Bytes: []byte("k"), Index: 1},
		{Bytes: []byte("k"), Index: 5},
	}
	lcp := radix.LCP(sorted)
	Break(sorted, lcp)
	got := make([]uint64, len(sorted))
	for i, e := range sorted {
		got[i] = e.Index
	}
	require.Equal(t, []uint64{1, 3, 5, 7}, got)
}

func TestBreakLeavesDistinctStringsAlone(t *testing.T) {
	sorted := []strcmp.Elem{
		{Bytes: []byte("a"), Index: 9},
		{Bytes: []byte("b"), Index: 1},
		{Bytes: []byte("c"), Index: 5},
	}
	lcp := radix.LCP(sorted)
	Break(sorted, lcp)
	require.EqualValues(t, 9, sorted[0].Index)
	require.EqualValues(t, 1, sorted[1].Index)
	require.EqualValues(t, 5, sorted[2].Index)
}

func TestBreakHandlesMixedRunsAndSingles(t *testing.T) {
	sorted := []strcmp.Elem{
		{Bytes: []byte("a"), Index: 2},
		{Bytes: []byte("eq"), Index: 9},
		{Bytes: []byte("eq"), Index: 1},
		{Bytes: []byte("eq"), Index: 5},
		{Bytes: []byte("z"), Index: 0},
	}
	lcp := radix.LCP(sorted)
	Break(sorted, lcp)
	got := make([]uint64, len(sorted))
	for i, e := range sorted {
		got[i] = e.Index
	}
	require.Equal(t, []uint64{2, 1, 5, 9, 0}, got)
}
