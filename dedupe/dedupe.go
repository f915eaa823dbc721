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

// Package dedupe re-sorts maximal runs of byte-equal strings by ascending
// origin index, the final step that locks in a stable total order for the
// indexed sort mode: byte comparison alone cannot distinguish equal
// strings, so runs of them get an index-only pass once they have already
// been grouped together by the byte sort.
package dedupe

import (
	"sort"

	"github.com/bingmann/distributed-string-sorting/strcmp"
)

// Break scans sorted (already ordered by strcmp.Bytes, with lcp computed
// by radix.LCP over the same slice) and re-sorts every maximal run of
// byte-equal adjacent strings by ascending index, in place. A run is
// detected the way the underlying LCP-array scan always has: position i
// continues the run started at i-1 when the common prefix between them
// (lcp[i]) equals both of their full lengths, i.e. they are byte-identical.
func Break(sorted []strcmp.Elem, lcp []int) {
	n := len(sorted)
	if n < 2 {
		return
	}
	start := 0
	for i := 1; i <= n; i++ {
		continues := i < n && lcp[i] == len(sorted[i-1].Bytes) && lcp[i] == len(sorted[i].Bytes)
		if continues {
			continue
		}
		if i-start >= 2 {
			sortByIndex(sorted[start:i])
		}
		start = i
	}
}

func sortByIndex(run []strcmp.Elem) {
	sort.Slice(run, func(i, j int) bool { return run[i].Index < run[j].Index })
}
