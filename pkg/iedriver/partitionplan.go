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
	"math"
	"math/rand"

	treemap "github.com/liyue201/gostl/ds/map"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/util"
)

// PartitionPlan is Sample-Range's split-point structure: N+1 ordered
// boundaries (b0=-inf .. bN=+inf) carving the X domain into N
// half-open ranges, one per left partition (spec.md §4.5 Strategy B).
type PartitionPlan struct {
	Boundaries []common.Value
}

// RangeFor returns the [min,max) bounds assigned to partition i.
func (p PartitionPlan) RangeFor(i int) (common.Value, common.Value) {
	return p.Boundaries[i], p.Boundaries[i+1]
}

const (
	negInf = common.Value(math.MinInt64)
	posInf = common.Value(math.MaxInt64)
)

// buildPartitionPlan samples sampleRatio of each partition's column,
// unions the samples into an ordered set (via gostl's treemap, the
// same ordered-container idiom the teacher's local table storage uses
// for its table index), sorts them, and resamples down to
// len(parts)-1 split points -- exactly enough to carve len(parts)
// half-open ranges once -inf/+inf are prepended/appended.
func buildPartitionPlan(parts []*batch.Batch, col string, sampleRatio float64, rng *rand.Rand) (PartitionPlan, error) {
	n := len(parts)
	if n <= 1 {
		return PartitionPlan{Boundaries: []common.Value{negInf, posInf}}, nil
	}

	cmp := func(a, b common.Value) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	seen := treemap.New[common.Value, struct{}](cmp)
	for _, part := range parts {
		vals, err := part.ColumnByName(col)
		if err != nil {
			return PartitionPlan{}, err
		}
		k := int(math.Ceil(float64(len(vals)) * sampleRatio))
		for _, idx := range util.SampleIndices(rng, len(vals), k) {
			seen.Insert(vals[idx], struct{}{})
		}
	}

	var sorted []common.Value
	for it := seen.Begin(); it.IsValid(); it.Next() {
		sorted = append(sorted, it.Key())
	}

	splitCount := n - 1
	boundaries := make([]common.Value, 0, n+1)
	boundaries = append(boundaries, negInf)
	splits := resample(sorted, splitCount, rng)
	// Fewer distinct sampled values than splits: repeat the last split
	// so the plan still carries one (possibly empty) range per partition.
	for len(splits) < splitCount {
		pad := posInf
		if len(splits) > 0 {
			pad = splits[len(splits)-1]
		}
		splits = append(splits, pad)
	}
	boundaries = append(boundaries, splits...)
	boundaries = append(boundaries, posInf)
	return PartitionPlan{Boundaries: boundaries}, nil
}

// resample draws k evenly-spaced values out of a sorted slice,
// standing in for the source's "samples.sample(N)" uniform re-draw
// over the already-sorted union of per-partition samples.
func resample(sorted []common.Value, k int, rng *rand.Rand) []common.Value {
	if k <= 0 || len(sorted) == 0 {
		return nil
	}
	if k >= len(sorted) {
		return append([]common.Value(nil), sorted...)
	}
	out := make([]common.Value, k)
	step := float64(len(sorted)) / float64(k+1)
	for i := 0; i < k; i++ {
		idx := int(step * float64(i+1))
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		out[i] = sorted[idx]
	}
	return out
}
