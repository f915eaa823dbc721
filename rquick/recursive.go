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
	"errors"
	"math/rand"

	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/exchange"
	"github.com/bingmann/distributed-string-sorting/internal/sorterr"
	"github.com/bingmann/distributed-string-sorting/median"
	"github.com/bingmann/distributed-string-sorting/merge"
	"github.com/bingmann/distributed-string-sorting/splitter"
	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

// tagsPerLevel is how many tags one recursion level reserves: offset 0 for
// the median-selection exchange, offset 2 for the partition byte stream and
// offset 3 for its indexed companion; offset 1 is not used.
const tagsPerLevel = 4

func levelTag(tagBase, level int) int { return tagBase + tagsPerLevel*level }

// sortRecursive implements one level of the hypercube quicksort: pivot
// selection, split, pairwise exchange, merge, and — unless the group has
// shrunk to two ranks — recursion into the half-size sub-group.
//
// Precondition: group.Size() is a power of two >= 2, and local is sorted
// by cmp. On return, local is sorted and, across the whole group, every
// string on a lower rank compares <= every string on a higher rank.
func sortRecursive(local []strcmp.Elem, group comm.Group, level int, tagBase int, cmp strcmp.Comparator, s settings, rng *rand.Rand, bits *bitstore.Store) ([]strcmp.Elem, error) {
	rank := group.Rank()
	size := group.Size()
	tag := levelTag(tagBase, level)

	// Step 1: pivot = BinTreeMedianSelect(MiddleMostPicker(local, k=2)).
	var pivotCandidates []strcmp.Elem
	timePhase(s.tracker, s.logger, rank, sorterr.MedianSelect, level, func() {
		pivotCandidates = median.MiddleMost(local, 2, rng, bits)
	})
	pivotSet := median.Select(pivotCandidates, 2, cmp, rng, bits, tag, group)
	if len(pivotSet) == 0 {
		s.logger.Errorw("phase failed", "phase", sorterr.MedianSelect, "level", level, "rank", rank, "error", errEmptyPivot)
		return nil, sorterr.New(sorterr.MedianSelect, rank, size, errEmptyPivot)
	}
	pivot := pivotSet[0]

	// Step 2-3: split the local buffer around the pivot.
	var sep int
	timePhase(s.tracker, s.logger, rank, sorterr.Partition, level, func() {
		sep = splitter.Locate(local, pivot, cmp, s.robust, rng, bits)
	})

	lowerHalf := rank < size/2
	var keep, send []strcmp.Elem
	if lowerHalf {
		keep, send = local[:sep], local[sep:]
	} else {
		keep, send = local[sep:], local[:sep]
	}

	partner := rank ^ (size / 2)

	sendBytes, sendIdx := encodeSend(send, s.indexed)

	var recvElemsOut []strcmp.Elem
	var exchangeErr error
	timePhase(s.tracker, s.logger, rank, sorterr.Exchange, level, func() {
		recvBytes, recvIdx, err := exchange.Pairwise(group, partner, tag+2, sendBytes, sendIdx, s.exchangeOpts...)
		if err != nil {
			exchangeErr = err
			return
		}
		recvElemsOut = decodeRecv(recvBytes, recvIdx)
	})
	if exchangeErr != nil {
		s.logger.Errorw("phase failed", "phase", sorterr.Exchange, "level", level, "rank", rank, "error", exchangeErr)
		return nil, sorterr.New(sorterr.Exchange, rank, size, exchangeErr)
	}

	var merged []strcmp.Elem
	timePhase(s.tracker, s.logger, rank, sorterr.Merge, level, func() {
		if s.pool != nil && s.mergeWorkers > 1 {
			merged = merge.Parallel(keep, recvElemsOut, cmp, s.pool, s.mergeWorkers)
		} else {
			merged = merge.Serial(keep, recvElemsOut, cmp)
		}
	})

	if size == 2 {
		return merged, nil
	}

	var sub comm.Group
	timePhase(s.tracker, s.logger, rank, sorterr.Split, level, func() {
		sub = group.SplitHalf()
	})
	return sortRecursive(merged, sub, level+1, tagBase, cmp, s, rng, bits)
}

var errEmptyPivot = errors.New("median selection returned no pivot")

func encodeSend(elems []strcmp.Elem, indexed bool) ([]byte, []uint64) {
	raw := stringbuffer.FromElems(elems, indexed)
	if !indexed {
		return raw.Bytes(), nil
	}
	return raw.Bytes(), raw.Indices()
}

func decodeRecv(bytesBlob []byte, indices []uint64) []strcmp.Elem {
	var buf stringbuffer.Buffer
	if indices != nil {
		buf = stringbuffer.NewIndexed(bytesBlob, indices)
	} else {
		buf = stringbuffer.New(bytesBlob)
	}
	return buf.Elems()
}

