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
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/iekernel"
	"github.com/daviszhen/iejoin/pkg/prune"
	"github.com/daviszhen/iejoin/pkg/summary"
	"github.com/daviszhen/iejoin/pkg/util"
)

// Join evaluates left.pred1 AND left.pred2 right across the full,
// possibly large, relations by partitioning both sides, pruning
// partition pairs with pkg/prune, and running pkg/iekernel.IEJoin on
// every surviving pair -- spec.md §4.5, both strategies.
func Join(ctx context.Context, left, right *batch.Batch, pred1, pred2 common.Predicate, cfg Config) ([][2]common.RowID, error) {
	if !pred1.Op.Valid() || !pred2.Op.Valid() {
		return nil, fmt.Errorf("pred1=%v pred2=%v: %w", pred1.Op, pred2.Op, common.ErrUnsupportedPredicate)
	}
	if left.RowCount() == 0 || right.RowCount() == 0 {
		return nil, nil
	}

	strategy := cfg.chooseStrategy(left.RowCount(), right.RowCount())
	util.Debug("iedriver: chose strategy", zap.Int("strategy", int(strategy)), zap.Int("left_rows", left.RowCount()), zap.Int("right_rows", right.RowCount()))

	var leftParts, rightParts []*batch.Batch
	var leftSummaries, rightSummaries []summary.PartitionSummary
	var err error

	switch strategy {
	case SampleRange:
		leftParts, rightParts, leftSummaries, rightSummaries, err = planSampleRange(left, right, pred1, pred2, cfg)
	default:
		leftParts, rightParts, leftSummaries, rightSummaries, err = planGlobalSort(left, right, pred1, pred2, cfg)
	}
	if err != nil {
		return nil, err
	}

	xAscending := !pred1.Op.Descending()
	yAscending := !pred2.Op.Descending()
	candidates := prune.Candidates(leftSummaries, rightSummaries, cfg.PruneMode, xAscending, yAscending)

	out, err := runCandidates(ctx, leftParts, rightParts, candidates, pred1, pred2, cfg.MaxWorkers)
	if err != nil {
		return nil, err
	}
	if cfg.DeterministicOutput {
		sortPairsLex(out)
	}
	return out, nil
}

// planGlobalSort implements Strategy A: sort each side on its own
// predicate column, partition into contiguous chunks, and summarise
// with the O(1) sorted-column reader on the sort key.
func planGlobalSort(left, right *batch.Batch, pred1, pred2 common.Predicate, cfg Config) (leftParts, rightParts []*batch.Batch, leftSummaries, rightSummaries []summary.PartitionSummary, err error) {
	// Partitioning always sorts ascending regardless of the
	// predicate's own direction (spec.md §4.5 Strategy A step 2) --
	// MinMaxOnSorted's O(1) path assumes ascending order.
	sortedLeft, err := left.SortBy(pred1.LeftCol, false)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sortedRight, err := right.SortBy(pred2.RightCol, false)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	leftParts = sortedLeft.Partition(cfg.partitionCount(left.RowCount()))
	rightParts = sortedRight.Partition(cfg.partitionCount(right.RowCount()))

	leftSummaries, err = summary.BuildAll(context.Background(), leftParts, pred1.LeftCol, pred2.LeftCol, true, false, cfg.MaxWorkers)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rightSummaries, err = summary.BuildAll(context.Background(), rightParts, pred1.RightCol, pred2.RightCol, false, true, cfg.MaxWorkers)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return leftParts, rightParts, leftSummaries, rightSummaries, nil
}

// planSampleRange implements Strategy B: partition each side into
// arbitrary (unsorted) contiguous chunks, derive approximate X split
// points for the left side from a sample, and keep exact summaries on
// the right (spec.md §4.5).
func planSampleRange(left, right *batch.Batch, pred1, pred2 common.Predicate, cfg Config) (leftParts, rightParts []*batch.Batch, leftSummaries, rightSummaries []summary.PartitionSummary, err error) {
	leftParts = left.Partition(cfg.partitionCount(left.RowCount()))
	rightParts = right.Partition(cfg.partitionCount(right.RowCount()))

	rng := rand.New(rand.NewSource(cfg.Seed))
	plan, err := buildPartitionPlan(leftParts, pred1.LeftCol, cfg.SampleRatio, rng)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// BuildAll's X extrema are computed but discarded below: the left
	// side's X bounds come from the sampled partition plan, not from
	// an exact scan of the partition's own data.
	leftSummaries, err = summary.BuildAll(context.Background(), leftParts, pred1.LeftCol, pred2.LeftCol, false, false, cfg.MaxWorkers)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for i := range leftSummaries {
		leftSummaries[i].MinX, leftSummaries[i].MaxX = plan.RangeFor(i)
	}

	rightSummaries, err = summary.BuildAll(context.Background(), rightParts, pred1.RightCol, pred2.RightCol, false, false, cfg.MaxWorkers)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return leftParts, rightParts, leftSummaries, rightSummaries, nil
}

func runCandidates(ctx context.Context, leftParts, rightParts []*batch.Batch, candidates []prune.Pair, pred1, pred2 common.Predicate, maxWorkers int) ([][2]common.RowID, error) {
	results := make([][]iekernel.Pair, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			pairs, err := iekernel.IEJoin(gctx, leftParts[c.Left], rightParts[c.Right], pred1, pred2)
			if err != nil {
				return err
			}
			results[i] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out [][2]common.RowID
	for _, pairs := range results {
		for _, p := range pairs {
			out = append(out, [2]common.RowID{p.Left, p.Right})
		}
	}
	return out, nil
}

func sortPairsLex(pairs [][2]common.RowID) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
