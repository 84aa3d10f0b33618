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

// Package prune implements the virtual cross-join pruner (C4): given
// per-partition min/max summaries for both sides of a join, decide
// which partition pairs could possibly contain a matching row before
// pkg/iekernel ever runs on them. Ported from original_source's
// has_intersection/virtual_cross_join; the _eq variant
// (virtual_cross_join_eq) is deliberately not ported, as spec.md calls
// it out as an inconsistent debugging leftover.
package prune

import (
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/summary"
)

// PruneMode selects how an inequality's range-consistency is tested.
type PruneMode int

const (
	// Symmetric uses max_left >= min_right && max_right >= min_left
	// for both predicates regardless of operator direction -- a safe
	// over-approximation (the source's own choice), and the default.
	Symmetric PruneMode = iota
	// Directional tests min_left <= max_right for </<=, and
	// max_left >= min_right for >/>=, per the operator actually used.
	Directional
)

// Pair identifies one surviving (left partition index, right
// partition index) candidate.
type Pair struct {
	Left  int
	Right int
}

func hasIntersection(minA, maxA, minB, maxB common.Value) bool {
	return maxA >= minB && maxB >= minA
}

// could reports whether [minL,maxL] and [minR,maxR] can possibly
// satisfy op (one of <, <=, >, >=) for directional mode; symmetric
// mode ignores op and always uses the overlap test.
func could(mode PruneMode, ascending bool, minL, maxL, minR, maxR common.Value) bool {
	if mode == Symmetric {
		return hasIntersection(minL, maxL, minR, maxR)
	}
	if ascending {
		return minL <= maxR
	}
	return maxL >= minR
}

// Candidates evaluates every (left, right) pair of partition summaries
// and returns those that cannot be ruled out, given the ascending/
// descending orientation of each predicate (spec.md §4.4). xAscending
// is true when predicate 1 is < or <=; yAscending likewise for
// predicate 2.
func Candidates(left, right []summary.PartitionSummary, mode PruneMode, xAscending, yAscending bool) []Pair {
	var out []Pair
	for _, l := range left {
		for _, r := range right {
			if could(mode, xAscending, l.MinX, l.MaxX, r.MinX, r.MaxX) &&
				could(mode, yAscending, l.MinY, l.MaxY, r.MinY, r.MaxY) {
				out = append(out, Pair{Left: l.ID, Right: r.ID})
			}
		}
	}
	return out
}
