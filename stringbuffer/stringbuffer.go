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

// Package stringbuffer holds a contiguous, zero-terminated byte blob plus a
// derived table of string views, with an optional parallel array of
// 64-bit origin indices for the indexed (stable) sort mode.
package stringbuffer

import "fmt"

// View locates one string inside Buffer.raw: raw[Offset:Offset+Length] is
// the string's bytes (no terminator), and raw[Offset+Length] == 0.
type View struct {
	Offset uint64
	Length uint64
}

// Buffer is a StringContainer: an owned byte blob plus a view table and an
// optional parallel index array. The zero value is an empty, non-indexed
// buffer.
type Buffer struct {
	raw     []byte
	views   []View
	indices []uint64 // len(indices) == len(views) when indexed
	indexed bool
}

// New parses raw into a non-indexed Buffer. raw must be a concatenation of
// zero-terminated strings; ownership of raw transfers to the Buffer.
func New(raw []byte) Buffer {
	b := Buffer{}
	b.Update(raw, nil)
	return b
}

// NewIndexed parses raw into an indexed Buffer, pairing each parsed view
// with the matching entry of indices (same order as the strings appear in
// raw). len(indices) must equal the number of zero-terminated strings in
// raw.
func NewIndexed(raw []byte, indices []uint64) Buffer {
	b := Buffer{indexed: true}
	b.Update(raw, indices)
	return b
}

// Len reports the number of strings held.
func (b *Buffer) Len() int { return len(b.views) }

// CharLen reports the number of bytes including every terminator.
func (b *Buffer) CharLen() int { return len(b.raw) }

// Indexed reports whether this buffer carries per-string origin indices.
func (b *Buffer) Indexed() bool { return b.indexed }

// Bytes returns the owned raw byte blob (zero-terminated strings
// concatenated back to back). The caller must not retain it across the
// next call to Update.
func (b *Buffer) Bytes() []byte { return b.raw }

// Views returns the view table, one entry per string, in stored order.
func (b *Buffer) Views() []View { return b.views }

// Indices returns the parallel index array; nil if the buffer is not
// indexed.
func (b *Buffer) Indices() []uint64 { return b.indices }

// At returns the string bytes (without terminator) for view i.
func (b *Buffer) At(i int) []byte {
	v := b.views[i]
	return b.raw[v.Offset : v.Offset+v.Length]
}

// IndexAt returns the origin index of view i. Panics if the buffer is not
// indexed.
func (b *Buffer) IndexAt(i int) uint64 {
	if !b.indexed {
		panic("stringbuffer: IndexAt called on non-indexed buffer")
	}
	return b.indices[i]
}

// Elem is one extracted, self-contained string: its bytes plus (if the
// source buffer was indexed) its origin index. Comparators and the
// recursion frame pass Elem values around rather than raw offsets once a
// buffer's backing array may be about to be replaced.
type Elem struct {
	Bytes []byte
	Index uint64
}

// ElemAt extracts view i as a self-contained Elem.
func (b *Buffer) ElemAt(i int) Elem {
	e := Elem{Bytes: b.At(i)}
	if b.indexed {
		e.Index = b.indices[i]
	}
	return e
}

// Elems extracts the whole view table as self-contained Elems, in order.
func (b *Buffer) Elems() []Elem {
	out := make([]Elem, b.Len())
	for i := range out {
		out[i] = b.ElemAt(i)
	}
	return out
}

// Update atomically replaces the buffer's contents, rebuilding the view
// table from scratch by scanning raw for zero terminators. Any views or
// Elems obtained before Update must not be used afterwards. indices may be
// nil for a non-indexed buffer; otherwise it must have exactly one entry
// per parsed string, in order.
func (b *Buffer) Update(raw []byte, indices []uint64) {
	b.raw = raw
	b.views = b.views[:0]
	start := uint64(0)
	for i, c := range raw {
		if c == 0 {
			off := start
			b.views = append(b.views, View{Offset: off, Length: uint64(i) - off})
			start = uint64(i) + 1
		}
	}
	if indices != nil {
		if len(indices) != len(b.views) {
			panic(fmt.Sprintf("stringbuffer: Update got %d indices for %d strings", len(indices), len(b.views)))
		}
		b.indexed = true
		b.indices = indices
	} else if b.indexed {
		b.indices = b.indices[:0]
	}
}

// FromElems rebuilds a Buffer from a slice of Elems, re-serializing the
// zero-terminated byte blob and (if any Elem carries meaningful index
// state, i.e. the caller is in indexed mode) the parallel index array.
// This is the Go-side equivalent of the original's per-string
// std::copy_n-into-a-back_inserter merge step (RQuick.hpp sortRec).
func FromElems(elems []Elem, indexed bool) Buffer {
	size := 0
	for _, e := range elems {
		size += len(e.Bytes) + 1
	}
	raw := make([]byte, size)
	pos := 0
	var indices []uint64
	if indexed {
		indices = make([]uint64, len(elems))
	}
	for i, e := range elems {
		pos += copy(raw[pos:], e.Bytes)
		raw[pos] = 0
		pos++
		if indexed {
			indices[i] = e.Index
		}
	}
	b := Buffer{indexed: indexed}
	b.Update(raw, indices)
	return b
}
