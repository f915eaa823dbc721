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

// Package shuffle implements the optional butterfly shuffle pre-pass: a
// log2(P)-round hypercube exchange where each round randomly partitions
// the local strings in half and trades one half with the partner along
// that dimension, so pivot quality at the first recursion level no longer
// depends on how the input happened to be distributed across ranks.
//
// Partition membership for one round is tracked in a roaring bitmap rather
// than a plain bool slice: the shuffled set is exactly the kind of sparse,
// set-algebra-shaped data roaring is built for, and it keeps the
// send/keep split itself inspectable (Contains, cardinality). Each round
// makes one pass to fill the bitmap and a second pass to split the
// elements by it.
package shuffle

import (
	"math/rand"

	"github.com/RoaringBitmap/roaring"
	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/internal/wire"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

const tag = 0

// Run performs the full log2(group.Size()) round butterfly shuffle and
// returns the locally held buffer afterward. Content is preserved across
// the whole group; only ownership moves (spec invariant).
func Run(data stringbuffer.Buffer, group comm.Group, rng *rand.Rand, bits *bitstore.Store, tagBase int) stringbuffer.Buffer {
	elems := data.Elems()
	indexed := data.Indexed()
	size := group.Size()

	for p, d := 0, 1; d < size; p, d = p+1, d*2 {
		partner := group.Rank() ^ d

		send := roaring.New()
		for i := range elems {
			if bits.Next(rng) == 1 {
				send.Add(uint32(i))
			}
		}

		var sendElems, keepElems []stringbuffer.Elem
		for i, e := range elems {
			if send.Contains(uint32(i)) {
				sendElems = append(sendElems, e)
			} else {
				keepElems = append(keepElems, e)
			}
		}

		roundTag := tagBase + tag + 2*p
		group.ISend(partner, roundTag, wire.EncodeElems(sendElems)).Wait()
		recvd := wire.DecodeElems(group.Recv(partner, roundTag))

		elems = append(keepElems, recvd...)
	}

	return stringbuffer.FromElems(elems, indexed)
}
