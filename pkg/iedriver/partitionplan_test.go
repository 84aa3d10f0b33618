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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/iejoin/pkg/batch"
)

func Test_BuildPartitionPlan_SinglePartitionIsUnbounded(t *testing.T) {
	part := buildBatch(t, [][3]int64{{0, 5, 5}, {1, 9, 9}})
	plan, err := buildPartitionPlan([]*batch.Batch{part}, "x", 1.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, []int64{negInf, posInf}, plan.Boundaries)

	minX, maxX := plan.RangeFor(0)
	assert.Equal(t, negInf, minX)
	assert.Equal(t, posInf, maxX)
}

func Test_BuildPartitionPlan_BoundaryCountMatchesPartitions(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	mk := func(idBase int64, vals []int64) *batch.Batch {
		rows := make([][3]int64, len(vals))
		for i, v := range vals {
			rows[i] = [3]int64{idBase + int64(i), v, v}
		}
		return buildBatch(t, rows)
	}
	parts := []*batch.Batch{
		mk(0, []int64{1, 2, 3, 4}),
		mk(100, []int64{10, 11, 12, 13}),
		mk(200, []int64{20, 21, 22, 23}),
	}
	plan, err := buildPartitionPlan(parts, "x", 1.0, rng)
	require.NoError(t, err)

	require.Len(t, plan.Boundaries, len(parts)+1)
	assert.Equal(t, negInf, plan.Boundaries[0])
	assert.Equal(t, posInf, plan.Boundaries[len(plan.Boundaries)-1])
	for i := 0; i < len(plan.Boundaries)-1; i++ {
		assert.LessOrEqual(t, plan.Boundaries[i], plan.Boundaries[i+1])
	}
}

func Test_Resample_FewerThanKReturnsAll(t *testing.T) {
	sorted := []int64{1, 2, 3}
	out := resample(sorted, 10, rand.New(rand.NewSource(3)))
	assert.Equal(t, sorted, out)
}

func Test_Resample_EmptyInputYieldsNil(t *testing.T) {
	out := resample(nil, 3, rand.New(rand.NewSource(4)))
	assert.Nil(t, out)
}
