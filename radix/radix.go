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

// Package radix is the local string-sort collaborator the driver calls
// before recursing: an MSD (most-significant-byte) bucket radix sort that
// bails out to a plain comparison sort once a bucket shrinks below a
// cutoff, so the recursion depth and bucket bookkeeping never dominate on
// small inputs.
package radix

import (
	"sort"

	"github.com/bingmann/distributed-string-sorting/strcmp"
)

// qSortCutoff is the bucket size below which Sort switches to sort.Slice
// instead of paying for another counting pass.
const qSortCutoff = 32

// maxDepth bounds MSD recursion by byte offset; strings that still tie
// past this many bytes fall through to the comparison sort, the same
// bail-out the MSD/American-flag family of sorts uses to avoid pathological
// recursion on long common prefixes.
const maxDepth = 32

// Sort orders elems in place by cmp using MSD radix bucketing on the raw
// bytes, falling back to a comparison sort for small buckets or once
// maxDepth is exceeded. cmp must agree with lexicographic byte order on
// the prefix radix inspects — Bytes and Indexed both do, since both
// compare bytes first.
func Sort(elems []strcmp.Elem, cmp strcmp.Comparator) {
	sortRange(elems, 0, cmp)
}

func sortRange(elems []strcmp.Elem, depth int, cmp strcmp.Comparator) {
	if len(elems) < qSortCutoff || depth >= maxDepth {
		compareSort(elems, cmp)
		return
	}

	// 257 buckets: byte values 0..255 plus one for strings that end
	// exactly at this depth (terminator already passed).
	var counts [257]int
	bucketOf := func(i int) int {
		if depth >= len(elems[i].Bytes) {
			return 0
		}
		return int(elems[i].Bytes[depth]) + 1
	}
	for i := range elems {
		counts[bucketOf(i)]++
	}

	// Already-pure bucket: nothing to partition at this depth, all
	// strings share the same byte (or all ended) — recurse one byte
	// deeper directly instead of doing a no-op partition pass.
	nonEmpty := 0
	for _, c := range counts {
		if c > 0 {
			nonEmpty++
		}
	}
	if nonEmpty == 1 {
		sortRange(elems, depth+1, cmp)
		return
	}

	offsets := make([]int, len(counts)+1)
	for b := 0; b < len(counts); b++ {
		offsets[b+1] = offsets[b] + counts[b]
	}

	out := make([]strcmp.Elem, len(elems))
	cursor := append([]int(nil), offsets[:len(counts)]...)
	for i := range elems {
		b := bucketOf(i)
		out[cursor[b]] = elems[i]
		cursor[b]++
	}
	copy(elems, out)

	for b := 0; b < len(counts); b++ {
		lo, hi := offsets[b], offsets[b+1]
		if hi-lo < 2 {
			continue
		}
		if b == 0 {
			// Bucket 0 holds strings that terminated at this depth;
			// they are already fully ordered relative to each other
			// only if cmp has no further tiebreak (e.g. indexed mode
			// still needs to compare indices).
			compareSort(elems[lo:hi], cmp)
			continue
		}
		sortRange(elems[lo:hi], depth+1, cmp)
	}
}

func compareSort(elems []strcmp.Elem, cmp strcmp.Comparator) {
	sort.Slice(elems, func(i, j int) bool { return cmp(elems[i], elems[j]) < 0 })
}

// LCP returns, for a slice already sorted by cmp, the longest-common-prefix
// length between each element and its predecessor; LCP[0] is always 0.
// Used by the dedupe package to find runs of equal strings cheaply.
func LCP(sorted []strcmp.Elem) []int {
	out := make([]int, len(sorted))
	for i := 1; i < len(sorted); i++ {
		out[i] = commonPrefixLen(sorted[i-1].Bytes, sorted[i].Bytes)
	}
	return out
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
