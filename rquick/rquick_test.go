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
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
	"github.com/stretchr/testify/require"
)

func encode(strs ...string) []byte {
	var out []byte
	for _, s := range strs {
		out = append(out, []byte(s)...)
		out = append(out, 0)
	}
	return out
}

func runSort(t *testing.T, n int, inputs []Data, opts ...Option) []stringbuffer.Buffer {
	return runSortWith(t, n, inputs, strcmp.Bytes, opts...)
}

func runSortWith(t *testing.T, n int, inputs []Data, cmp strcmp.Comparator, opts ...Option) []stringbuffer.Buffer {
	t.Helper()
	groups := comm.NewLocalFabric(n)
	results := make([]stringbuffer.Buffer, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		r := r
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(r) + 1))
			results[r], errs[r] = Sort(context.Background(), rng, inputs[r], groups[r], 0, cmp, opts...)
		}()
	}
	wg.Wait()
	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}
	return results
}

// TestSortScenarioS1 is spec scenario S1: P=4, each rank already holds its
// final share; the sort must be a no-op on content and ordering.
func TestSortScenarioS1(t *testing.T) {
	inputs := []Data{
		{Bytes: encode("ant", "bee")},
		{Bytes: encode("cat", "dog")},
		{Bytes: encode("eel", "fox")},
		{Bytes: encode("gnu", "hen")},
	}
	results := runSort(t, 4, inputs)
	requireGloballySorted(t, results)
	requireContentPreserved(t, inputs, results)
}

// TestSortScenarioS3 is spec scenario S3: all-equal input under robust
// mode must come out perfectly balanced, 4 copies per rank.
func TestSortScenarioS3(t *testing.T) {
	inputs := []Data{
		{Bytes: encode("eq", "eq", "eq", "eq")},
		{Bytes: encode("eq", "eq", "eq", "eq")},
		{Bytes: encode("eq", "eq", "eq", "eq")},
		{Bytes: encode("eq", "eq", "eq", "eq")},
	}
	results := runSort(t, 4, inputs, WithRobust(true))
	total := 0
	for _, r := range results {
		require.Equal(t, 4, r.Len(), "balance bound violated")
		total += r.Len()
	}
	require.Equal(t, 16, total)
}

// TestSortScenarioS4 is spec scenario S4: indexed mode must yield a stable
// order even though every string is byte-identical.
func TestSortScenarioS4(t *testing.T) {
	inputs := []Data{
		{Bytes: encode("k", "k"), Indices: []uint64{7, 3}},
		{Bytes: encode("k", "k"), Indices: []uint64{1, 5}},
	}
	results := runSortWith(t, 2, inputs, strcmp.Indexed)

	require.True(t, results[0].Indexed())
	idx0 := results[0].Indices()
	idx1 := results[1].Indices()
	require.Equal(t, []uint64{1, 3}, idx0)
	require.Equal(t, []uint64{5, 7}, idx1)
}

func requireGloballySorted(t *testing.T, results []stringbuffer.Buffer) {
	t.Helper()
	var last []byte
	for _, r := range results {
		elems := r.Elems()
		for i := 1; i < len(elems); i++ {
			require.LessOrEqual(t, strcmp.Bytes(elems[i-1], elems[i]), 0)
		}
		if len(elems) > 0 {
			if last != nil {
				require.LessOrEqual(t, strcmp.Bytes(stringbuffer.Elem{Bytes: last}, elems[0]), 0)
			}
			last = elems[len(elems)-1].Bytes
		}
	}
}

func requireContentPreserved(t *testing.T, inputs []Data, results []stringbuffer.Buffer) {
	t.Helper()
	want := make(map[string]int)
	for _, in := range inputs {
		for _, s := range splitZero(in.Bytes) {
			want[s]++
		}
	}
	got := make(map[string]int)
	for _, r := range results {
		for _, e := range r.Elems() {
			got[string(e.Bytes)]++
		}
	}
	require.Equal(t, want, got)
}

func splitZero(raw []byte) []string {
	var out []string
	start := 0
	for i, c := range raw {
		if c == 0 {
			out = append(out, string(raw[start:i]))
			start = i + 1
		}
	}
	return out
}

func TestSortScenarioS2NonPowerOfTwo(t *testing.T) {
	inputs := []Data{
		{Bytes: encode("z")},
		{Bytes: encode("y")},
		{Bytes: encode("x")},
	}
	groups := comm.NewLocalFabric(3)
	results := make([]stringbuffer.Buffer, 3)
	errs := make([]error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	for r := 0; r < 3; r++ {
		r := r
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(r) + 1))
			results[r], errs[r] = Sort(context.Background(), rng, inputs[r], groups[r], 0, strcmp.Bytes)
		}()
	}
	wg.Wait()
	for r, err := range errs {
		require.NoError(t, err, "rank %d", r)
	}

	total := 0
	for _, r := range results {
		total += r.Len()
	}
	require.Equal(t, 3, total, fmt.Sprintf("content must be preserved across the fold: got %v", results))
}
