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

// Package summary implements the partition summariser (C3): cheap
// min/max extrema over a batch column, used by pkg/prune to decide
// whether a pair of partitions can possibly satisfy the join
// predicates before C2 ever runs.
package summary

import (
	"fmt"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/util"
)

// PartitionSummary is the (min, max) extrema of the two predicate
// columns (X and Y) of one partition, identified by ID (the
// partition's index within its side).
type PartitionSummary struct {
	ID   int
	MinX common.Value
	MaxX common.Value
	MinY common.Value
	MaxY common.Value
}

// MinMax scans column `col` of b and returns its extrema. Safe to call
// on any batch, sorted or not.
func MinMax(b *batch.Batch, col string) (common.Value, common.Value, error) {
	vals, err := b.ColumnByName(col)
	if err != nil {
		return 0, 0, err
	}
	if len(vals) == 0 {
		return 0, 0, fmt.Errorf("column %q is empty: %w", col, common.ErrArityMismatch)
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, nil
}

// MinMaxOnSorted reads the extrema of column `col` in O(1), assuming b
// is already sorted ascending by that column. The precondition is
// checked only in debug builds (see assert_debug.go/assert_release.go).
func MinMaxOnSorted(b *batch.Batch, col string) (common.Value, common.Value, error) {
	vals, err := b.ColumnByName(col)
	if err != nil {
		return 0, 0, err
	}
	if len(vals) == 0 {
		return 0, 0, fmt.Errorf("column %q is empty: %w", col, common.ErrArityMismatch)
	}
	util.DebugAssertFunc(isSortedAscending(vals), "MinMaxOnSorted: column is not sorted ascending")
	return vals[0], vals[len(vals)-1], nil
}

func isSortedAscending(vals []common.Value) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return false
		}
	}
	return true
}

// Build summarises one batch on (xCol, yCol), tagging the result with
// id. xSorted/ySorted select the O(1) path per column when the caller
// knows the batch is already sorted that way.
func Build(b *batch.Batch, id int, xCol, yCol string, xSorted, ySorted bool) (PartitionSummary, error) {
	minX, maxX, err := extrema(b, xCol, xSorted)
	if err != nil {
		return PartitionSummary{}, err
	}
	minY, maxY, err := extrema(b, yCol, ySorted)
	if err != nil {
		return PartitionSummary{}, err
	}
	return PartitionSummary{ID: id, MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}, nil
}

func extrema(b *batch.Batch, col string, sorted bool) (common.Value, common.Value, error) {
	if sorted {
		return MinMaxOnSorted(b, col)
	}
	return MinMax(b, col)
}
