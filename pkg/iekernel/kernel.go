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

// Package iekernel implements the single-partition IEJoin/IESelfJoin
// kernel (C2): the sort-and-bitset scan at the heart of the IEJoin
// family. Ported directly from original_source/src/dataframe/iejoin.h
// (IEJoin/IESelfJoin/OffsetArray/join_lists), re-expressed without
// raw pointers or a boost dynamic_bitset.
package iekernel

import (
	"context"
	"fmt"
	"sort"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/util"
)

// Pair is one matching (left id, right id) output tuple.
type Pair struct {
	Left  common.RowID
	Right common.RowID
}

func validate(op1, op2 common.Op) error {
	if !op1.Valid() || !op2.Valid() {
		return fmt.Errorf("op1=%v op2=%v: %w", op1, op2, common.ErrUnsupportedPredicate)
	}
	return nil
}

// stableSortPerm returns the permutation that sorts key ascending (or
// descending), stable: ties keep their original relative order.
func stableSortPerm(key []common.Value, descending bool) []int {
	perm := make([]int, len(key))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		a, b := key[perm[i]], key[perm[j]]
		if descending {
			return a > b
		}
		return a < b
	})
	return perm
}

func applyPermInt64(src []common.Value, perm []int) []common.Value {
	out := make([]common.Value, len(perm))
	for i, p := range perm {
		out[i] = src[p]
	}
	return out
}

// projectXY pulls (id, x, y) out of a batch as plain slices.
func projectXY(b *batch.Batch, xCol, yCol string) (ids []common.RowID, x, y []common.Value, err error) {
	ids = b.IDs()
	x, err = b.ColumnByName(xCol)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err = b.ColumnByName(yCol)
	if err != nil {
		return nil, nil, nil, err
	}
	return ids, x, y, nil
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return common.ErrCancelled
	default:
		return nil
	}
}

// OffsetArray computes, for each l in [0,len(L)), the smallest l' such
// that op1(L[l], Lr[l']) holds, or len(Lr) if none — spec.md step 6.
// Both arrays are assumed sorted in the direction op1 requires, so a
// single monotone two-pointer scan suffices.
func OffsetArray(l, lr []common.Value, op1 common.Op) []int {
	n := len(lr)
	out := make([]int, len(l))
	lp := 0
	for i, lv := range l {
		for lp < n && !op1.Apply(lv, lr[lp]) {
			lp++
		}
		if lp < n {
			out[i] = lp
		} else {
			out[i] = n
		}
	}
	return out
}

// IEJoin evaluates T.LeftCol op1 T'.RightCol AND T.LeftCol2 op2
// T'.RightCol2 between two (possibly unequal-sized) relations,
// following spec.md §4.2's seven-step algorithm exactly.
func IEJoin(ctx context.Context, left, right *batch.Batch, pred1, pred2 common.Predicate) ([]Pair, error) {
	if err := validate(pred1.Op, pred2.Op); err != nil {
		return nil, err
	}
	m, n := left.RowCount(), right.RowCount()
	if m == 0 || n == 0 {
		return nil, nil
	}

	idL, xL, yL, err := projectXY(left, pred1.LeftCol, pred2.LeftCol)
	if err != nil {
		return nil, err
	}
	idR, xR, yR, err := projectXY(right, pred1.RightCol, pred2.RightCol)
	if err != nil {
		return nil, err
	}

	desc1 := pred1.Op.Descending()
	// 2. sort L by X (desc iff op1 descending); record L1. The position
	// column p_L attached "after this sort" is just the identity over
	// X-sorted slots, so capturing it is implicit in permX itself.
	permX := stableSortPerm(xL, desc1)
	L1 := applyPermInt64(xL, permX)

	// 3. sort L' by X' the same way; record Lr1.
	permXr := stableSortPerm(xR, desc1)
	Lr1 := applyPermInt64(xR, permXr)
	// Lk = L''s id column after the X'-sort (captured before the Y'-sort).
	Lk := applyPermInt64Int(idR, permXr)

	desc2 := !pred2.Op.Descending() // deliberate inversion, spec.md step 4/5
	// 4. sort L by Y (desc2), starting from the X-sorted state; record
	// L2. P[i] = permY[i] is exactly "p_L reordered by the Y-sort",
	// i.e. the X-sorted position of the row now at Y-sorted slot i.
	yLInXOrder := applyPermInt64(yL, permX)
	permY := stableSortPerm(yLInXOrder, desc2)
	L2 := applyPermInt64(yLInXOrder, permY)
	P := permY
	// Li = L's id column after the Y-sort.
	idLInXOrder := applyPermInt64Int(idL, permX)
	Li := applyPermInt64Int(idLInXOrder, permY)

	// 5. sort L' by Y' (desc2), starting from the X'-sorted state;
	// record L_2; Pr = permYr by the same reasoning as P above.
	yRInXOrder := applyPermInt64(yR, permXr)
	permYr := stableSortPerm(yRInXOrder, desc2)
	L_2 := applyPermInt64(yRInXOrder, permYr)
	Pr := permYr

	// 6. offset array O1, indexed by X-sorted position.
	O1 := OffsetArray(L1, Lr1, pred1.Op)

	// 7. main scan.
	bs := util.NewJoinBitset(n)
	var result []Pair
	off2 := 0
	for i := 0; i < m; i++ {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		for off2 < n && pred2.Op.Apply(L2[i], L_2[off2]) {
			bs.Set(Pr[off2])
			off2++
		}
		pos := P[i]
		off1 := O1[pos]
		for {
			k := bs.FindNext(off1)
			if k < 0 || k >= n {
				break
			}
			result = append(result, Pair{Left: Li[i], Right: Lk[k]})
			off1 = k + 1
		}
	}
	return result, nil
}

func applyPermInt64Int(src []common.RowID, perm []int) []common.RowID {
	out := make([]common.RowID, len(perm))
	for i, p := range perm {
		out[i] = src[p]
	}
	return out
}

// IESelfJoin evaluates T.LeftCol pred1.Op T.LeftCol AND T.LeftCol2
// pred2.Op T.LeftCol2 against a single relation, following spec.md
// §4.2's self-join variant (neighborhood-scan equality offset instead
// of the two-relation offset array).
func IESelfJoin(ctx context.Context, t *batch.Batch, pred1, pred2 common.Predicate) ([]Pair, error) {
	if err := validate(pred1.Op, pred2.Op); err != nil {
		return nil, err
	}
	n := t.RowCount()
	if n == 0 {
		return nil, nil
	}

	ids, x, y, err := projectXY(t, pred1.LeftCol, pred2.LeftCol)
	if err != nil {
		return nil, err
	}

	desc1 := pred1.Op.Descending()
	permX := stableSortPerm(x, desc1)
	L1 := applyPermInt64(x, permX)
	// Li = id column in X-sorted order, captured before the Y-sort.
	Li := applyPermInt64Int(ids, permX)

	desc2 := !pred2.Op.Descending()
	yInXOrder := applyPermInt64(y, permX)
	permY := stableSortPerm(yInXOrder, desc2)
	L2 := applyPermInt64(yInXOrder, permY)
	// P[i] = X-sorted position of the row that is at Y-sorted slot i.
	P := permY

	bs := util.NewJoinBitset(n)
	var result []Pair
	off2 := 0
	for i := 0; i < n; i++ {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		for off2 < n && pred2.Op.Apply(L2[i], L2[off2]) {
			bs.Set(P[off2])
			off2++
		}
		pos := P[i]
		off1 := pos
		for off1 > 0 && pred1.Op.Apply(L1[off1], L1[pos]) {
			off1--
		}
		for off1 < n && !pred1.Op.Apply(L1[pos], L1[off1]) {
			off1++
		}
		for {
			j := bs.FindNext(off1)
			if j < 0 || j >= n {
				break
			}
			result = append(result, Pair{Left: Li[pos], Right: Li[j]})
			off1 = j + 1
		}
	}
	return result, nil
}

// LoopJoin is the naive nested-loop reference evaluator, grounded on
// original_source's own LoopJoin. It exists purely as an oracle for
// the P1/P3 testable properties and the pruning-safety checks in
// pkg/prune; it is never on the hot path of a real join.
func LoopJoin(left, right *batch.Batch, pred1, pred2 common.Predicate) ([]Pair, error) {
	idL, xL, yL, err := projectXY(left, pred1.LeftCol, pred2.LeftCol)
	if err != nil {
		return nil, err
	}
	idR, xR, yR, err := projectXY(right, pred1.RightCol, pred2.RightCol)
	if err != nil {
		return nil, err
	}
	var result []Pair
	for i := range idL {
		for j := range idR {
			if pred1.Op.Apply(xL[i], xR[j]) && pred2.Op.Apply(yL[i], yR[j]) {
				result = append(result, Pair{Left: idL[i], Right: idR[j]})
			}
		}
	}
	return result, nil
}

// SelfLoopJoin is LoopJoin specialized to T=T' (used by IESelfJoin's
// own property tests).
func SelfLoopJoin(t *batch.Batch, pred1, pred2 common.Predicate) ([]Pair, error) {
	// Like IESelfJoin, read only each predicate's LeftCol, on both sides.
	p1 := common.Predicate{Op: pred1.Op, LeftCol: pred1.LeftCol, RightCol: pred1.LeftCol}
	p2 := common.Predicate{Op: pred2.Op, LeftCol: pred2.LeftCol, RightCol: pred2.LeftCol}
	return LoopJoin(t, t, p1, p2)
}
