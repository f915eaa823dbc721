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

package fold

import (
	"sync"
	"testing"

	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
	"github.com/stretchr/testify/require"
)

// TestToPow2ConservesMultiset exercises P9: P=3 folds to Q=2, no data is
// lost, and the exile (rank 2) ends up with the empty buffer.
func TestToPow2ConservesMultiset(t *testing.T) {
	const n = 3
	groups := comm.NewLocalFabric(n)
	inputs := []stringbuffer.Buffer{
		stringbuffer.New([]byte("z\x00")),
		stringbuffer.New([]byte("y\x00")),
		stringbuffer.New([]byte("x\x00")),
	}

	results := make([]Result, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		r := r
		go func() {
			defer wg.Done()
			results[r] = ToPow2(inputs[r], groups[r], 0)
		}()
	}
	wg.Wait()

	require.True(t, results[0].Active)
	require.True(t, results[1].Active)
	require.False(t, results[2].Active)
	require.Equal(t, 2, results[0].Group.Size())
	require.Equal(t, 2, results[1].Group.Size())

	total := 0
	for _, r := range results {
		total += r.Data.Len()
	}
	require.Equal(t, 3, total)
	require.Equal(t, 0, results[2].Data.Len())
}

func TestToPow2NoOpWhenAlreadyPow2(t *testing.T) {
	const n = 4
	groups := comm.NewLocalFabric(n)
	var wg sync.WaitGroup
	wg.Add(n)
	results := make([]Result, n)
	for r := 0; r < n; r++ {
		r := r
		go func() {
			defer wg.Done()
			buf := stringbuffer.New([]byte("s\x00"))
			results[r] = ToPow2(buf, groups[r], 0)
		}()
	}
	wg.Wait()
	for r := 0; r < n; r++ {
		require.True(t, results[r].Active)
		require.Equal(t, 1, results[r].Data.Len())
		require.Equal(t, 4, results[r].Group.Size())
	}
}
