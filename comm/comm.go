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

// Package comm is the narrow message-passing collaborator the sorter core
// is built against: probe, asynchronous send/receive, barrier, and
// sub-group carving. It mirrors the handful of MPI primitives the RQuick
// algorithm actually uses (MPI_Probe, MPI_Isend/Irecv, MPI_Waitall,
// MPI_Barrier, MPI_Comm_split) behind a small interface so the core is
// testable against an in-process fabric instead of real sockets or MPI.
package comm

// SendRequest is the handle returned by an asynchronous send. Wait blocks
// until the payload has been handed off to the transport.
type SendRequest interface {
	Wait()
}

// RecvRequest is the handle returned by an asynchronous receive that was
// already sized by a prior Probe call. Wait blocks until the payload is
// available and returns it.
type RecvRequest interface {
	Wait() []byte
}

// Group is a contiguous sub-range of cooperating ranks: the message-passing
// collaborator interface from spec section 6. Every call blocks the
// calling goroutine only as documented; Group implementations must be safe
// for concurrent use by the one goroutine driving a given rank (the core
// never calls a Group concurrently from two goroutines for the same rank,
// except where ParallelMerge/Shuffle workers are explicitly documented to
// stay within one already-completed exchange).
type Group interface {
	// Rank returns this process's position within the group, [0, Size()).
	Rank() int
	// Size returns the number of ranks in the group.
	Size() int
	// Barrier blocks until every rank in the group has called Barrier.
	Barrier()
	// SplitHalf returns the sub-group containing this rank's half: ranks
	// [0, Size()/2) for low-half members, [Size()/2, Size()) for
	// high-half members, each renumbered from 0. Size() must be even.
	SplitHalf() Group
	// Range returns the sub-group formed from ranks [first, last) of this
	// group, renumbered from 0. Every member of the original group calls
	// Range with identical arguments; ranks outside [first, last) receive
	// a group in which they do not participate (callers that are not in
	// range must not use the returned Group except to discard it).
	Range(first, last int) Group
	// Probe blocks until a message from src tagged tag is pending and
	// returns its length in bytes. Every Probe call must be immediately
	// followed by exactly one IRecv or Recv for the same (src, tag) pair
	// before any other Probe/IRecv/Recv targets that pair again — this
	// mirrors every call site in this module and lets the in-process
	// fabric dispense with true non-destructive peeking.
	Probe(src, tag int) int
	// ISend asynchronously sends data to dst tagged tag. The returned
	// request's Wait completes once the transport has taken ownership of
	// data; data must not be mutated before Wait returns.
	ISend(dst, tag int, data []byte) SendRequest
	// IRecv asynchronously receives the message already sized by a
	// matching Probe(src, tag) call.
	IRecv(src, tag int) RecvRequest
	// Send performs a blocking send.
	Send(dst, tag int, data []byte)
	// Recv performs a blocking probe+receive from src tagged tag.
	Recv(src, tag int) []byte
}
