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

// Package fold shrinks an arbitrary-size process group down to the
// largest power-of-two subgroup by having the excess high-ranked
// "exile" processes ship their data to a designated receiver and retire.
package fold

import (
	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/internal/wire"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

// Result describes what FoldToPow2 did for the calling rank.
type Result struct {
	// Active reports whether the calling rank remains in the returned
	// sub-group (false on exile ranks, which hold the empty buffer).
	Active bool
	// Data is the calling rank's buffer after folding: receivers get
	// their own data plus everything their exile sent; exiles get an
	// empty buffer.
	Data stringbuffer.Buffer
	// Group is the power-of-two sub-group to continue sorting in. Exile
	// ranks get the same value Range would give their non-participating
	// members — it must not be used for anything but being discarded.
	Group comm.Group
}

const tag = 0

// ToPow2 folds group down to its largest power-of-two prefix. Q is that
// size; ranks [0, Q) are receivers (possibly no-ops if Q == group.Size()),
// ranks [Q, group.Size()) are exiles.
func ToPow2(data stringbuffer.Buffer, group comm.Group, tagBase int) Result {
	size := group.Size()
	q := largestPow2LE(size)
	sub := group.Range(0, q)

	if size == q {
		return Result{Active: true, Data: data, Group: sub}
	}

	rank := group.Rank()
	if rank >= q {
		// Exile: ship everything to rank - q and retire.
		elems := data.Elems()
		group.Send(rank-q, tagBase+tag, wire.EncodeElems(elems))
		return Result{Active: false, Data: stringbuffer.Buffer{}, Group: sub}
	}

	merged := data.Elems()
	for exile := q + rank; exile < size; exile += q {
		recvd := wire.DecodeElems(group.Recv(exile, tagBase+tag))
		merged = append(merged, recvd...)
	}
	return Result{Active: true, Data: stringbuffer.FromElems(merged, data.Indexed()), Group: sub}
}

func largestPow2LE(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
