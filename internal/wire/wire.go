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

// Package wire is the on-the-wire encoding this module uses for element
// lists and index streams sent over a comm.Group (the partition byte stream
// of PairwiseExchange is sent as the raw zero-terminated blob): a flat,
// self-delimited byte slice, the same
// header-then-payload shape netgroup frames over TCP with, so the
// in-process fabric and the real network transport carry bit-identical
// bytes. No protobuf or gob: the algorithm only ever ships raw string data
// plus a handful of fixed-width counters, and framing it by hand keeps the
// hot exchange/merge path free of reflection-based encoders.
package wire

import (
	"encoding/binary"

	"github.com/bingmann/distributed-string-sorting/stringbuffer"
)

// EncodeElems serializes elems as: uint64 count, then per element a uint64
// byte-length, the raw bytes, and a uint64 origin index.
func EncodeElems(elems []stringbuffer.Elem) []byte {
	size := 8
	for _, e := range elems {
		size += 8 + len(e.Bytes) + 8
	}
	buf := make([]byte, size)
	off := 0
	binary.BigEndian.PutUint64(buf[off:], uint64(len(elems)))
	off += 8
	for _, e := range elems {
		binary.BigEndian.PutUint64(buf[off:], uint64(len(e.Bytes)))
		off += 8
		copy(buf[off:], e.Bytes)
		off += len(e.Bytes)
		binary.BigEndian.PutUint64(buf[off:], e.Index)
		off += 8
	}
	return buf
}

// DecodeElems is the inverse of EncodeElems. An empty buf decodes to nil;
// other truncated input panics rather than returning an error — a
// peer that ships a corrupt frame is a programming error, not a recoverable
// condition, per spec 7's phase-scoped abort semantics.
func DecodeElems(buf []byte) []stringbuffer.Elem {
	if len(buf) < 8 {
		if len(buf) == 0 {
			return nil
		}
		panic("wire: truncated element count")
	}
	n := binary.BigEndian.Uint64(buf)
	off := 8
	out := make([]stringbuffer.Elem, 0, n)
	for i := uint64(0); i < n; i++ {
		l := binary.BigEndian.Uint64(buf[off:])
		off += 8
		b := buf[off : off+int(l)]
		off += int(l)
		idx := binary.BigEndian.Uint64(buf[off:])
		off += 8
		out = append(out, stringbuffer.Elem{Bytes: b, Index: idx})
	}
	return out
}

// EncodeUint64s serializes a slice of uint64 values the same flat way
// (big-endian, no count prefix); exchange uses it for the index stream.
func EncodeUint64s(vals []uint64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

// DecodeUint64s is the inverse of EncodeUint64s.
func DecodeUint64s(buf []byte) []uint64 {
	n := len(buf) / 8
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return out
}
