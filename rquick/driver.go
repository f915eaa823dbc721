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

// Package rquick ties together the recursive hypercube quicksort ("RQuick")
// splitter-sorting primitive: fold the process group to a power of two,
// optionally shuffle to make pivot quality independent of input order,
// radix-sort locally, break duplicate runs in indexed mode, then recurse
// through BinTreeMedianSelect + LocateSplitter + PairwiseExchange +
// ParallelMerge until every sub-group has shrunk to a single rank.
package rquick

import (
	"context"
	"math/rand"

	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/dedupe"
	"github.com/bingmann/distributed-string-sorting/fold"
	"github.com/bingmann/distributed-string-sorting/internal/sorterr"
	"github.com/bingmann/distributed-string-sorting/radix"
	"github.com/bingmann/distributed-string-sorting/shuffle"
	"github.com/bingmann/distributed-string-sorting/bitstore"
	"github.com/bingmann/distributed-string-sorting/strcmp"
	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

// Data is the caller's local input: a zero-terminated byte blob and, in
// indexed mode, a parallel array of origin indices (one per string, in
// the order strings appear in Bytes).
type Data struct {
	Bytes   []byte
	Indices []uint64 // nil for non-indexed mode
}

func (d Data) indexed() bool { return d.Indices != nil }

// Sort is the driver entry point: fold to a power of two, optionally
// shuffle, sort locally, then recurse. It returns the calling rank's
// sorted share of the global input; exile ranks retired by FoldToPow2
// receive an empty buffer. Context cancellation is only checked right
// before and right after the fold; it is not checked again — once a
// pairwise exchange or median-selection round is in flight, the sort is a
// tightly coupled collective and cannot unilaterally bail without
// deadlocking the peer that is still waiting on it (spec 5: no
// cancellation mid-collective).
func Sort(ctx context.Context, rng *rand.Rand, data Data, group comm.Group, tagBase int, cmp strcmp.Comparator, opts ...Option) (stringbuffer.Buffer, error) {
	s := defaultSettings()
	s.indexed = data.indexed()
	for _, opt := range opts {
		opt(&s)
	}
	bits := &bitstore.Store{}

	rank, size := group.Rank(), group.Size()

	if size == 1 {
		buf := toBuffer(data)
		sortLocally(&buf, cmp, s, rank)
		return buf, nil
	}

	if err := ctx.Err(); err != nil {
		s.logger.Errorw("phase failed", "phase", sorterr.BaseCase, "rank", rank, "error", err)
		return stringbuffer.Buffer{}, sorterr.New(sorterr.BaseCase, rank, size, err)
	}

	var fr fold.Result
	timePhase(s.tracker, s.logger, rank, sorterr.MoveToPow2, 0, func() {
		fr = fold.ToPow2(toBuffer(data), group, tagBase)
	})
	if !fr.Active {
		return stringbuffer.Buffer{}, nil
	}
	buf := fr.Data
	group = fr.Group

	if err := ctx.Err(); err != nil {
		s.logger.Errorw("phase failed", "phase", sorterr.MoveToPow2, "rank", rank, "error", err)
		return stringbuffer.Buffer{}, sorterr.New(sorterr.MoveToPow2, rank, size, err)
	}

	if s.shuffle {
		timePhase(s.tracker, s.logger, rank, sorterr.Shuffle, 0, func() {
			buf = shuffle.Run(buf, group, rng, bits, tagBase)
		})
	}

	sortLocally(&buf, cmp, s, rank)

	if group.Size() == 1 {
		return buf, nil
	}

	local := buf.Elems()
	result, err := sortRecursive(local, group, 0, tagBase, cmp, s, rng, bits)
	if err != nil {
		s.logger.Errorw("sort aborted", "rank", rank, "error", err)
		return stringbuffer.Buffer{}, err
	}
	return stringbuffer.FromElems(result, s.indexed), nil
}

func toBuffer(data Data) stringbuffer.Buffer {
	if data.Indices != nil {
		return stringbuffer.NewIndexed(data.Bytes, data.Indices)
	}
	return stringbuffer.New(data.Bytes)
}

func sortLocally(buf *stringbuffer.Buffer, cmp strcmp.Comparator, s settings, rank int) {
	timePhase(s.tracker, s.logger, rank, sorterr.SortLocally, 0, func() {
		elems := buf.Elems()
		radix.Sort(elems, cmp)
		if s.indexed {
			lcp := radix.LCP(elems)
			dedupe.Break(elems, lcp)
		}
		*buf = stringbuffer.FromElems(elems, s.indexed)
	})
}
