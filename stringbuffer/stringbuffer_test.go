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

package stringbuffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParsesZeroTerminatedStrings(t *testing.T) {
	raw := []byte("ant\x00bee\x00\x00")
	b := New(raw)
	require.Equal(t, 3, b.Len())
	require.Equal(t, "ant", string(b.At(0)))
	require.Equal(t, "bee", string(b.At(1)))
	require.Equal(t, "", string(b.At(2)))
}

func TestNewIndexedPairsIndicesInOrder(t *testing.T) {
	raw := []byte("k\x00k\x00")
	b := NewIndexed(raw, []uint64{7, 3})
	require.True(t, b.Indexed())
	require.EqualValues(t, 7, b.IndexAt(0))
	require.EqualValues(t, 3, b.IndexAt(1))
}

func TestUpdatePanicsOnIndexMismatch(t *testing.T) {
	var b Buffer
	require.Panics(t, func() {
		b.Update([]byte("a\x00b\x00"), []uint64{1})
	})
}

func TestFromElemsRoundTrips(t *testing.T) {
	elems := []Elem{{Bytes: []byte("x"), Index: 5}, {Bytes: []byte("yy"), Index: 9}}
	b := FromElems(elems, true)
	got := b.Elems()
	require.Equal(t, elems, got)
}

func TestElemsEmptyBuffer(t *testing.T) {
	var b Buffer
	require.Empty(t, b.Elems())
	require.Equal(t, 0, b.Len())
}
