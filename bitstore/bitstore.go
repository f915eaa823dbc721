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

// Package bitstore draws fair coin flips from a 64-bit PRNG one bit at a
// time, amortizing the cost of generating randomness across many calls.
package bitstore

import "math/rand"

// Store caches one 64-bit word from the injected PRNG and hands out its
// bits one at a time. The zero value is ready to use.
type Store struct {
	word uint64
	left uint8
}

// Next returns 0 or 1, refilling the cached word from rng when exhausted.
func (s *Store) Next(rng *rand.Rand) uint64 {
	if s.left == 0 {
		s.word = rng.Uint64()
		s.left = 64
	}
	bit := s.word & 1
	s.word >>= 1
	s.left--
	return bit
}
