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

package comm

import "sync"

// boxKey names one ordered, tagged channel between two global rank ids.
type boxKey struct {
	src, dst, tag int
}

type envelope struct {
	data []byte
}

// fabric is the shared transport backing every Group carved from one
// LocalFabric, keyed by global rank ids so that sub-groups created by
// SplitHalf/Range still talk over the same physical mailboxes a real MPI
// sub-communicator would reuse.
type fabric struct {
	mu     sync.Mutex
	boxes  map[boxKey]chan envelope
	primed map[boxKey]envelope // receiver-side cache populated by Probe
}

func newFabric() *fabric {
	return &fabric{
		boxes:  make(map[boxKey]chan envelope),
		primed: make(map[boxKey]envelope),
	}
}

func (f *fabric) box(key boxKey) chan envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.boxes[key]
	if !ok {
		ch = make(chan envelope, 1)
		f.boxes[key] = ch
	}
	return ch
}

func (f *fabric) probe(self, src, tag int) int {
	key := boxKey{src, self, tag}
	env := <-f.box(key)
	f.mu.Lock()
	f.primed[key] = env
	f.mu.Unlock()
	return len(env.data)
}

func (f *fabric) takeRecv(self, src, tag int) []byte {
	key := boxKey{src, self, tag}
	f.mu.Lock()
	env, ok := f.primed[key]
	if ok {
		delete(f.primed, key)
	}
	f.mu.Unlock()
	if !ok {
		panic("comm: IRecv/Recv called without a matching prior Probe")
	}
	return env.data
}

func (f *fabric) send(self, dst, tag int, data []byte) {
	f.box(boxKey{self, dst, tag}) <- envelope{data: data}
}

// cyclicBarrier is a reusable (cyclic) barrier for a fixed-size group of
// goroutines, one per simulated rank.
type cyclicBarrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   int
}

func newCyclicBarrier(n int) *cyclicBarrier {
	b := &cyclicBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *cyclicBarrier) wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}

// localGroup is a Group backed by an in-process fabric: a contiguous slice
// of global rank ids, a local rank index into that slice, and a barrier
// scoped to exactly those members.
type localGroup struct {
	fab     *fabric
	ranks   []int // global ids of members, in local-rank order
	me      int   // local rank index
	barrier *cyclicBarrier
}

// NewLocalFabric builds n Groups, one per simulated rank 0..n-1, all
// wired to the same in-process transport. The returned slice is indexed by
// rank: groups[r] is rank r's handle on the full group.
func NewLocalFabric(n int) []Group {
	fab := newFabric()
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = i
	}
	barrier := newCyclicBarrier(n)
	out := make([]Group, n)
	for r := 0; r < n; r++ {
		out[r] = &localGroup{fab: fab, ranks: ranks, me: r, barrier: barrier}
	}
	return out
}

func (g *localGroup) Rank() int { return g.me }
func (g *localGroup) Size() int { return len(g.ranks) }

func (g *localGroup) Barrier() { g.barrier.wait() }

func (g *localGroup) global(local int) int { return g.ranks[local] }

func (g *localGroup) SplitHalf() Group {
	half := len(g.ranks) / 2
	if g.me < half {
		return g.Range(0, half)
	}
	return g.Range(half, len(g.ranks))
}

func (g *localGroup) Range(first, last int) Group {
	sub := append([]int(nil), g.ranks[first:last]...)
	me := g.global(g.me) // translate, then find local index below
	local := -1
	for i, gid := range sub {
		if gid == me {
			local = i
			break
		}
	}
	return &localGroup{
		fab:     g.fab,
		ranks:   sub,
		me:      local,
		barrier: newCyclicBarrier(len(sub)),
	}
}

func (g *localGroup) Probe(src, tag int) int {
	return g.fab.probe(g.global(g.me), g.global(src), tag)
}

type doneRequest struct{ done chan struct{} }

func (r *doneRequest) Wait() { <-r.done }

func (g *localGroup) ISend(dst, tag int, data []byte) SendRequest {
	done := make(chan struct{})
	self, target := g.global(g.me), g.global(dst)
	go func() {
		g.fab.send(self, target, tag, data)
		close(done)
	}()
	return &doneRequest{done: done}
}

type recvResult struct{ data []byte }

func (r *recvResult) Wait() []byte { return r.data }

func (g *localGroup) IRecv(src, tag int) RecvRequest {
	return &recvResult{data: g.fab.takeRecv(g.global(g.me), g.global(src), tag)}
}

func (g *localGroup) Send(dst, tag int, data []byte) {
	g.ISend(dst, tag, data).Wait()
}

func (g *localGroup) Recv(src, tag int) []byte {
	g.Probe(src, tag)
	return g.IRecv(src, tag).Wait()
}
