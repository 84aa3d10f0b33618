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

package iekernel

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/util"
)

func schemaXY() common.Schema {
	return common.Schema{Columns: []common.Column{
		{Name: "id", Type: common.CTypeInt64},
		{Name: "x", Type: common.CTypeInt64},
		{Name: "y", Type: common.CTypeInt64},
	}}
}

func mustBatch(t *testing.T, rows [][3]int64) *batch.Batch {
	t.Helper()
	bld := batch.NewBuilder(schemaXY())
	for _, r := range rows {
		require.NoError(t, bld.AppendRow([]common.Value{r[0], r[1], r[2]}))
	}
	b, err := bld.Build()
	require.NoError(t, err)
	return b
}

func sortPairs(pairs []Pair) []Pair {
	out := append([]Pair(nil), pairs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	return out
}

// Test_IESelfJoin_West is S1 from spec.md: the toy self-join over
// (id, time, cost), predicate time > time' AND cost < cost'.
func Test_IESelfJoin_West(t *testing.T) {
	rows := [][3]int64{
		{0, 100, 6},
		{1, 140, 11},
		{2, 80, 10},
		{3, 90, 5},
	}
	tbl := mustBatch(t, rows)
	pred1 := common.Predicate{Op: common.OpGt, LeftCol: "x"}
	pred2 := common.Predicate{Op: common.OpLt, LeftCol: "y"}

	got, err := IESelfJoin(context.Background(), tbl, pred1, pred2)
	require.NoError(t, err)

	oracle, err := SelfLoopJoin(tbl, pred1, pred2)
	require.NoError(t, err)
	assert.Equal(t, sortPairs(oracle), sortPairs(got))
	assert.Equal(t, []Pair{{Left: 0, Right: 2}, {Left: 3, Right: 2}}, sortPairs(got))
}

// Test_IEJoin_AllTiesOnX is S4: every row ties on X, so the join
// degenerates to an evaluation purely on Y; must still match the loop
// join exactly (tie handling exercises the stable-sort path).
func Test_IEJoin_AllTiesOnX(t *testing.T) {
	left := mustBatch(t, [][3]int64{{0, 7, 1}, {1, 7, 5}, {2, 7, 3}})
	right := mustBatch(t, [][3]int64{{10, 7, 2}, {11, 7, 4}, {12, 7, 0}})
	pred1 := common.Predicate{Op: common.OpLe, LeftCol: "x", RightCol: "x"}
	pred2 := common.Predicate{Op: common.OpLt, LeftCol: "y", RightCol: "y"}

	got, err := IEJoin(context.Background(), left, right, pred1, pred2)
	require.NoError(t, err)
	want, err := LoopJoin(left, right, pred1, pred2)
	require.NoError(t, err)

	assert.Equal(t, sortPairs(want), sortPairs(got))
}

// Test_IEJoin_SingleRowEachSide is S5: a 1x1 join reduces to a direct
// predicate evaluation.
func Test_IEJoin_SingleRowEachSide(t *testing.T) {
	left := mustBatch(t, [][3]int64{{0, 1, 1}})
	right := mustBatch(t, [][3]int64{{1, 2, 2}})
	pred1 := common.Predicate{Op: common.OpLt, LeftCol: "x", RightCol: "x"}
	pred2 := common.Predicate{Op: common.OpLt, LeftCol: "y", RightCol: "y"}

	got, err := IEJoin(context.Background(), left, right, pred1, pred2)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Left: 0, Right: 1}}, got)

	pred2Flip := common.Predicate{Op: common.OpGt, LeftCol: "y", RightCol: "y"}
	got2, err := IEJoin(context.Background(), left, right, pred1, pred2Flip)
	require.NoError(t, err)
	assert.Empty(t, got2)
}

// Test_IEJoin_EmptySides is P6: either side empty yields no pairs and
// no error.
func Test_IEJoin_EmptySides(t *testing.T) {
	empty := mustBatch(t, nil)
	one := mustBatch(t, [][3]int64{{0, 1, 1}})
	pred1 := common.Predicate{Op: common.OpLt, LeftCol: "x", RightCol: "x"}
	pred2 := common.Predicate{Op: common.OpLt, LeftCol: "y", RightCol: "y"}

	got, err := IEJoin(context.Background(), empty, one, pred1, pred2)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = IEJoin(context.Background(), one, empty, pred1, pred2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Test_IEJoin_RejectsUnsupportedOp exercises validate: a zero-value Op
// is not one of the four supported inequalities.
func Test_IEJoin_RejectsUnsupportedOp(t *testing.T) {
	left := mustBatch(t, [][3]int64{{0, 1, 1}})
	right := mustBatch(t, [][3]int64{{1, 2, 2}})
	pred1 := common.Predicate{LeftCol: "x", RightCol: "x"}
	pred2 := common.Predicate{Op: common.OpLt, LeftCol: "y", RightCol: "y"}

	_, err := IEJoin(context.Background(), left, right, pred1, pred2)
	assert.ErrorIs(t, err, common.ErrUnsupportedPredicate)
}

// Test_IEJoin_MatchesLoopJoin is P1: for randomized inputs and every
// operator combination, the kernel's output set must equal the naive
// O(m*n) oracle's, for both the two-relation and self-join forms.
func Test_IEJoin_MatchesLoopJoin(t *testing.T) {
	ops := []common.Op{common.OpLt, common.OpLe, common.OpGt, common.OpGe}
	rng := rand.New(rand.NewSource(42))

	randBatch := func(n int, idBase int64) *batch.Batch {
		bld := batch.NewBuilder(schemaXY())
		for i := 0; i < n; i++ {
			require.NoError(t, bld.AppendRow([]common.Value{
				idBase + int64(i),
				int64(rng.Intn(20)),
				int64(rng.Intn(20)),
			}))
		}
		b, err := bld.Build()
		require.NoError(t, err)
		return b
	}

	for trial := 0; trial < 20; trial++ {
		m := rng.Intn(30)
		n := rng.Intn(30)
		left := randBatch(m, 0)
		right := randBatch(n, 1000)
		pred1 := common.Predicate{Op: ops[rng.Intn(len(ops))], LeftCol: "x", RightCol: "x"}
		pred2 := common.Predicate{Op: ops[rng.Intn(len(ops))], LeftCol: "y", RightCol: "y"}

		got, err := IEJoin(context.Background(), left, right, pred1, pred2)
		require.NoError(t, err)
		want, err := LoopJoin(left, right, pred1, pred2)
		require.NoError(t, err)
		assert.Equalf(t, sortPairs(want), sortPairs(got), "trial %d m=%d n=%d pred1=%v pred2=%v", trial, m, n, pred1.Op, pred2.Op)
	}
}

// Test_IESelfJoin_MatchesLoopJoin is P1's self-join counterpart.
func Test_IESelfJoin_MatchesLoopJoin(t *testing.T) {
	ops := []common.Op{common.OpLt, common.OpLe, common.OpGt, common.OpGe}
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		n := rng.Intn(30)
		bld := batch.NewBuilder(schemaXY())
		for i := 0; i < n; i++ {
			require.NoError(t, bld.AppendRow([]common.Value{
				int64(i),
				int64(rng.Intn(10)),
				int64(rng.Intn(10)),
			}))
		}
		tbl, err := bld.Build()
		require.NoError(t, err)

		pred1 := common.Predicate{Op: ops[rng.Intn(len(ops))], LeftCol: "x"}
		pred2 := common.Predicate{Op: ops[rng.Intn(len(ops))], LeftCol: "y"}

		got, err := IESelfJoin(context.Background(), tbl, pred1, pred2)
		require.NoError(t, err)
		want, err := SelfLoopJoin(tbl, pred1, pred2)
		require.NoError(t, err)
		assert.Equalf(t, sortPairs(want), sortPairs(got), "trial %d n=%d pred1=%v pred2=%v", trial, n, pred1.Op, pred2.Op)
	}
}

// Test_OffsetArray is a white-box check of step 6: each output offset
// is the first position in lr where op1(l[i], lr[pos]) holds, agreeing
// with a linear scan from zero.
func Test_OffsetArray(t *testing.T) {
	l := []common.Value{1, 3, 3, 5}
	lr := []common.Value{0, 2, 3, 4, 6}
	got := OffsetArray(l, lr, common.OpLe)

	for i, lv := range l {
		want := len(lr)
		for j, rv := range lr {
			if common.OpLe.Apply(lv, rv) {
				want = j
				break
			}
		}
		assert.Equalf(t, want, got[i], "l[%d]=%d", i, lv)
	}
}

// Test_JoinBitsetFindNextInvariant checks the bitset primitive behind
// P4: FindNext(from) always returns either -1 or the smallest set bit
// index >= from.
func Test_JoinBitsetFindNextInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 200
	bitset := util.NewJoinBitset(n)
	set := map[int]bool{}
	for i := 0; i < n/3; i++ {
		idx := rng.Intn(n)
		bitset.Set(idx)
		set[idx] = true
	}
	for from := 0; from < n; from++ {
		want := -1
		for i := from; i < n; i++ {
			if set[i] {
				want = i
				break
			}
		}
		assert.Equal(t, want, bitset.FindNext(from))
	}
}
