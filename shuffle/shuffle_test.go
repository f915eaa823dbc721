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

package shuffle

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
	"github.com/stretchr/testify/require"
)

// TestRunPreservesContent exercises the shuffle invariant: the total
// string set is unchanged after the butterfly pass, only its distribution
// across ranks.
func TestRunPreservesContent(t *testing.T) {
	const n = 4
	groups := comm.NewLocalFabric(n)

	want := make(map[string]int)
	inputs := make([]stringbuffer.Buffer, n)
	for r := 0; r < n; r++ {
		raw := []byte(fmt.Sprintf("s%d-a\x00s%d-b\x00s%d-c\x00", r, r, r))
		inputs[r] = stringbuffer.New(raw)
		for _, e := range inputs[r].Elems() {
			want[string(e.Bytes)]++
		}
	}

	results := make([]stringbuffer.Buffer, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for r := 0; r < n; r++ {
		r := r
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(r) + 11))
			var bits bitstore.Store
			results[r] = Run(inputs[r], groups[r], rng, &bits, 0)
		}()
	}
	wg.Wait()

	got := make(map[string]int)
	for r := 0; r < n; r++ {
		for _, e := range results[r].Elems() {
			got[string(e.Bytes)]++
		}
	}
	require.Equal(t, want, got)
}
