// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import "math/bits"

// JoinBitset is a dense, word-packed bit array, all-zero on creation,
// used by the IEJoin kernel's main scan to mark right-side rows that
// have satisfied the Y-predicate so far. It is the Go counterpart of
// the source's boost::dynamic_bitset<>, packing bits the way Bitmap
// (see bitmap.go) packs validity bits, but defaulting to all-clear
// rather than all-valid and exposing FindNext instead of a
// validity-oriented API.
type JoinBitset struct {
	words []uint64
	n     int
}

// NewJoinBitset allocates a bitset of length n bits, all zero. The
// caller owns the returned bitset and is expected to let it go out of
// scope at the end of the kernel invocation (spec.md "Resource
// policy").
func NewJoinBitset(n int) *JoinBitset {
	return &JoinBitset{
		words: make([]uint64, (n+63)/64),
		n:     n,
	}
}

// Len returns the number of bits the bitset was sized to.
func (b *JoinBitset) Len() int {
	return b.n
}

// Set marks bit i.
func (b *JoinBitset) Set(i int) {
	b.words[i/64] |= 1 << uint(i%64)
}

// Test reports whether bit i is set.
func (b *JoinBitset) Test(i int) bool {
	return b.words[i/64]&(1<<uint(i%64)) != 0
}

// FindNext returns the index of the first set bit at position >= from,
// or -1 if none exists. from may be negative (interpreted as 0).
func (b *JoinBitset) FindNext(from int) int {
	if from < 0 {
		from = 0
	}
	if from >= b.n {
		return -1
	}
	wordIdx := from / 64
	bitIdx := uint(from % 64)

	// mask off bits below `from` in the first word
	w := b.words[wordIdx] &^ (1<<bitIdx - 1)
	for {
		if w != 0 {
			pos := wordIdx*64 + bits.TrailingZeros64(w)
			if pos >= b.n {
				return -1
			}
			return pos
		}
		wordIdx++
		if wordIdx >= len(b.words) {
			return -1
		}
		w = b.words[wordIdx]
	}
}
