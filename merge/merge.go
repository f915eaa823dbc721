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

// Package merge combines two sorted runs into one, either serially or, for
// large enough inputs, by partitioning the output into disjoint ranges and
// merging each range on its own worker — every worker computes its own
// input boundaries via TwoSequenceSelection first, so no range depends on
// another and no locking is needed on the output.
package merge

import (
	"sync"

	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/panjf2000/ants/v2"
)

// Serial merges a and b with cmp using a standard two-pointer merge.
func Serial(a, b []strcmp.Elem, cmp strcmp.Comparator) []strcmp.Elem {
	out := make([]strcmp.Elem, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if cmp(a[i], b[j]) <= 0 {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// TwoSequenceSelection finds (a, b) with a+b == k, 0 <= a <= len(A),
// 0 <= b <= len(B), such that A[:a] and B[:b] together hold exactly the k
// smallest elements of A∪B under cmp, with ties broken toward A (an A
// element equal to a B element ranks first). It runs a shrinking binary
// search over A, using a lower bound into B at each candidate midpoint to
// compute that midpoint's combined rank, in O(log min(len(A), k) * log len(B))
// comparisons.
func TwoSequenceSelection(a, b []strcmp.Elem, k int, cmp strcmp.Comparator) (int, int) {
	lo, hi := 0, len(a)
	if k < hi {
		hi = k
	}
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		// lower bound of a[mid-1] in b: first index in b that is >= a[mid-1].
		bIdx := lowerBound(b, a[mid-1], cmp)
		if mid+bIdx <= k {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	aIdx := lo
	bIdx := k - aIdx
	if bIdx > len(b) {
		bIdx = len(b)
		aIdx = k - bIdx
	}
	return aIdx, bIdx
}

func lowerBound(v []strcmp.Elem, x strcmp.Elem, cmp strcmp.Comparator) int {
	lo, hi := 0, len(v)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(v[mid], x) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Parallel merges a and b into a single sorted slice using up to workers
// goroutines drawn from an ants pool, each computing its disjoint output
// range via TwoSequenceSelection before merging it independently. A
// workers value of 0 or 1, or a combined input smaller than minParallelLen,
// falls back to Serial.
const minParallelLen = 1 << 14

func Parallel(a, b []strcmp.Elem, cmp strcmp.Comparator, pool *ants.Pool, workers int) []strcmp.Elem {
	total := len(a) + len(b)
	if pool == nil || workers < 2 || total < minParallelLen {
		return Serial(a, b, cmp)
	}
	if workers > total {
		workers = total
	}

	out := make([]strcmp.Elem, total)
	step := (total + workers - 1) / workers

	type bound struct{ aStart, bStart, aEnd, bEnd int }
	bounds := make([]bound, workers)
	prevA, prevB := 0, 0
	for t := 0; t < workers; t++ {
		k := (t + 1) * step
		if k > total {
			k = total
		}
		aEnd, bEnd := TwoSequenceSelection(a, b, k, cmp)
		bounds[t] = bound{aStart: prevA, bStart: prevB, aEnd: aEnd, bEnd: bEnd}
		prevA, prevB = aEnd, bEnd
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	outOff := 0
	for t := 0; t < workers; t++ {
		t := t
		off := outOff
		bd := bounds[t]
		outOff += (bd.aEnd - bd.aStart) + (bd.bEnd - bd.bStart)
		err := pool.Submit(func() {
			defer wg.Done()
			mergeInto(out[off:], a[bd.aStart:bd.aEnd], b[bd.bStart:bd.bEnd], cmp)
		})
		if err != nil {
			// Pool saturated or closed: run this range inline rather than
			// deadlocking the WaitGroup.
			func() {
				defer wg.Done()
				mergeInto(out[off:], a[bd.aStart:bd.aEnd], b[bd.bStart:bd.bEnd], cmp)
			}()
		}
	}
	wg.Wait()
	return out
}

func mergeInto(dst []strcmp.Elem, a, b []strcmp.Elem, cmp strcmp.Comparator) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if cmp(a[i], b[j]) <= 0 {
			dst[k] = a[i]
			i++
		} else {
			dst[k] = b[j]
			j++
		}
		k++
	}
	for ; i < len(a); i++ {
		dst[k] = a[i]
		k++
	}
	for ; j < len(b); j++ {
		dst[k] = b[j]
		k++
	}
}
