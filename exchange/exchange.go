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

// Package exchange is the pairwise send/probe/receive primitive every
// recursion level uses to trade the partitioned halves of its local buffer
// with its hypercube partner. Non-indexed mode ships one byte stream;
// indexed mode ships a second stream of packed 64-bit indices alongside it
// on tag+1, exactly as spec'd for the wire format.
package exchange

import (
	"github.com/bingmann/distributed-string-sorting/comm"
	"github.com/bingmann/distributed-string-sorting/internal/sorterr"
	"github.com/bingmann/distributed-string-sorting/internal/wire"
	"github.com/pierrec/lz4/v4"
)

// Option configures one Pairwise call.
type Option func(*options)

type options struct {
	compress bool
}

// WithCompression enables lz4 framing of the byte stream before it is
// posted, and transparent decompression on receive. Index streams, being
// high-entropy 64-bit counters, are never compressed.
func WithCompression() Option {
	return func(o *options) { o.compress = true }
}

// Pairwise ships sendBytes (and, when indices is non-nil, the matching
// index stream on tag+1) to dst, and returns whatever dst sent back on the
// same two tags. Both directions complete before Pairwise returns; ordering
// between the byte and index streams is not guaranteed, only that both
// finish (spec 4.F).
func Pairwise(group comm.Group, partner, tag int, sendBytes []byte, indices []uint64, opts ...Option) (recvBytes []byte, recvIndices []uint64, err error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	out := sendBytes
	if o.compress {
		out = compress(sendBytes)
	}

	sreq := group.ISend(partner, tag, out)
	var isreq comm.SendRequest
	if indices != nil {
		isreq = group.ISend(partner, tag+1, wire.EncodeUint64s(indices))
	}

	n := group.Probe(partner, tag)
	_ = n
	raw := group.IRecv(partner, tag).Wait()
	if o.compress {
		raw, err = decompress(raw)
		if err != nil {
			return nil, nil, &sorterr.Error{Phase: sorterr.Exchange, Err: err}
		}
	}
	recvBytes = raw

	if indices != nil {
		group.Probe(partner, tag+1)
		recvIndices = wire.DecodeUint64s(group.IRecv(partner, tag+1).Wait())
	}

	sreq.Wait()
	if isreq != nil {
		isreq.Wait()
	}
	return recvBytes, recvIndices, nil
}

func compress(src []byte) []byte {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil || n == 0 {
		// Incompressible or tiny input: lz4 leaves n == 0 when the
		// compressed form would not be smaller. Fall back to raw bytes
		// prefixed with a zero length so decompress can tell them apart.
		out := make([]byte, 8+len(src))
		putLen(out, 0)
		copy(out[8:], src)
		return out
	}
	out := make([]byte, 8+n)
	putLen(out, len(src))
	copy(out[8:], dst[:n])
	return out
}

func decompress(src []byte) ([]byte, error) {
	origLen := getLen(src)
	body := src[8:]
	if origLen == 0 {
		return body, nil
	}
	dst := make([]byte, origLen)
	n, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func putLen(buf []byte, n int) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(n >> (8 * uint(i)))
	}
}

func getLen(buf []byte) int {
	n := 0
	for i := 0; i < 8; i++ {
		n |= int(buf[i]) << (8 * uint(i))
	}
	return n
}
