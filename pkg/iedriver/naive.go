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

package iedriver

import (
	"context"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/iekernel"
	"github.com/daviszhen/iejoin/pkg/prune"
)

// JoinNaive is the partitioned nested-loop baseline ported from
// original_source's ScalableLoopJoin: partition both sides, prune
// pairs with the same summaries Global Sort uses, and evaluate every
// surviving pair with iekernel.LoopJoin instead of IEJoin. It exists
// purely as an oracle, independent of the IEJoin kernel, for the
// driver's tests (P1/P2). Because it prunes with the same pruner as
// Join, it does not check pruning safety (P3). It is never on the hot
// path of a real join.
func JoinNaive(ctx context.Context, left, right *batch.Batch, pred1, pred2 common.Predicate, cfg Config) ([][2]common.RowID, error) {
	if !pred1.Op.Valid() || !pred2.Op.Valid() {
		return nil, common.ErrUnsupportedPredicate
	}
	if left.RowCount() == 0 || right.RowCount() == 0 {
		return nil, nil
	}

	leftParts, rightParts, leftSummaries, rightSummaries, err := planGlobalSort(left, right, pred1, pred2, cfg)
	if err != nil {
		return nil, err
	}

	xAscending := !pred1.Op.Descending()
	yAscending := !pred2.Op.Descending()
	candidates := prune.Candidates(leftSummaries, rightSummaries, cfg.PruneMode, xAscending, yAscending)

	var out [][2]common.RowID
	for _, c := range candidates {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		pairs, err := iekernel.LoopJoin(leftParts[c.Left], rightParts[c.Right], pred1, pred2)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			out = append(out, [2]common.RowID{p.Left, p.Right})
		}
	}
	if cfg.DeterministicOutput {
		sortPairsLex(out)
	}
	return out, nil
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
