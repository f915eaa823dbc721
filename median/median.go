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

// Package median implements the distributed splitter selection primitive:
// a binary pairwise-reduction tree that narrows 2k candidates per meeting
// down to the k nearest the running median, until one rank's worth
// survives at the root, which is then broadcast back down the same tree.
package median

import (
	"math/rand"

	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/internal/wire"
	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

func sendElems(elems []stringbuffer.Elem, group comm.Group, dst, tag int) {
	group.Send(dst, tag, wire.EncodeElems(elems))
}

func recvElems(group comm.Group, src, tag int) []stringbuffer.Elem {
	return wire.DecodeElems(group.Recv(src, tag))
}

// MiddleMost returns the k central elements of sorted (already
// lexicographically sorted per cmp), randomly shifting by one element when
// len(sorted) and k have different parity so repeated calls do not
// systematically favor one half (spec 4.D).
func MiddleMost(sorted []stringbuffer.Elem, k int, rng *rand.Rand, bits *bitstore.Store) []stringbuffer.Elem {
	n := len(sorted)
	if n <= k {
		out := make([]stringbuffer.Elem, n)
		copy(out, sorted)
		return out
	}
	off := (n - k) / 2
	sameParity := (n%2 == 0) == (k%2 == 0)
	shift := uint64(0)
	if !sameParity {
		shift = bits.Next(rng)
	}
	begin := off + int(shift)
	out := make([]stringbuffer.Elem, k)
	copy(out, sorted[begin:begin+k])
	return out
}

// tag offsets reserved within one median-selection call's tag budget; the
// caller (rquick) derives a fresh base per recursion level so these never
// collide across levels.
const (
	tagData = 0
)

// Select runs the binary reduction tree described in spec 4.C: candidates
// (already containing at most k elements, i.e. already reduced locally via
// MiddleMost) are merged pairwise up a conceptual binary tree rooted at
// rank 0 of group, each meeting keeping only the central k via MiddleMost,
// until a single k-sized (or smaller) set survives at the root; that set
// is then broadcast back down so every rank ends with an identical
// buffer (spec P8).
func Select(candidates []stringbuffer.Elem, k int, cmp strcmp.Comparator, rng *rand.Rand, bits *bitstore.Store, tagBase int, group comm.Group) []stringbuffer.Elem {
	rank := group.Rank()
	size := group.Size()

	cur := candidates
	// Up-phase: at distance d = 1,2,4,..., ranks with bit d clear merge in
	// their partner's data (rank ^ d) and keep it; ranks with bit d set
	// send and drop out of the reduction.
	for d := 1; d < size; d *= 2 {
		if rank&d != 0 {
			partner := rank - d
			sendElems(cur, group, partner, tagBase+tagData)
			cur = nil
			break // this rank is done contributing; it only waits for the broadcast below
		}
		partner := rank + d
		if partner >= size {
			continue
		}
		recvd := recvElems(group, partner, tagBase+tagData)
		merged := mergeSorted(cur, recvd, cmp)
		cur = MiddleMost(merged, k, rng, bits)
	}

	// Down-phase: rank 0 alone holds the final answer after the up-phase;
	// double the set of ranks that have it each round (d = 1, 2, 4, ...),
	// the mirror image of the up-phase's halving, until every rank in the
	// group has a byte-identical copy.
	for d := 1; d < size; d *= 2 {
		switch {
		case rank < d:
			partner := rank + d
			if partner < size {
				sendElems(cur, group, partner, tagBase+tagData)
			}
		case rank < 2*d:
			partner := rank - d
			cur = recvElems(group, partner, tagBase+tagData)
		}
	}
	return cur
}

func mergeSorted(a, b []stringbuffer.Elem, cmp strcmp.Comparator) []stringbuffer.Elem {
	out := make([]stringbuffer.Elem, 0, len(a)+len(b))
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
