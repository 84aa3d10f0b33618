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

// Package iedriver implements the partitioned IEJoin driver (C5): it
// splits both sides into partitions, prunes partition pairs with
// pkg/prune, and runs pkg/iekernel on every surviving pair. Two
// partitioning strategies are supported (Global Sort and Sample-Range)
// and are chosen automatically by input size, or forced via Config.
package iedriver

import (
	"runtime"

	"github.com/daviszhen/iejoin/pkg/prune"
)

// Strategy selects how the driver partitions its inputs.
type Strategy int

const (
	// Auto picks Global Sort or Sample-Range based on input size.
	Auto Strategy = iota
	GlobalSort
	SampleRange
)

// Config holds the driver's tunables, matching spec.md §6.4 plus the
// expansion fields (MaxWorkers, Seed, Strategy).
type Config struct {
	// BucketSize is the target partition size for contiguous
	// (equal-rows) partitioning.
	BucketSize int
	// PartitionCountMin is the minimum number of partitions per side.
	PartitionCountMin int
	// SampleRatio is the fraction of each partition sampled when
	// building Sample-Range's split points.
	SampleRatio float64
	// PruneMode selects the symmetric or directional overlap test.
	PruneMode prune.PruneMode
	// DeterministicOutput, if set, sorts the result lexicographically.
	DeterministicOutput bool
	// MaxWorkers bounds concurrent partition-pair/summary fan-out.
	// Zero means unbounded (all pairs dispatched at once).
	MaxWorkers int
	// Seed controls Sample-Range's sampling; fixing it makes
	// Sample-Range's partition plan reproducible across runs.
	Seed int64
	// Strategy forces Global Sort or Sample-Range; Auto (the zero
	// value) chooses by input size.
	Strategy Strategy
}

// DefaultConfig returns the tunables' documented defaults.
func DefaultConfig() Config {
	return Config{
		BucketSize:          10000,
		PartitionCountMin:   2,
		SampleRatio:         0.10,
		PruneMode:           prune.Symmetric,
		DeterministicOutput: false,
		MaxWorkers:          runtime.GOMAXPROCS(0),
		Seed:                1,
		Strategy:            Auto,
	}
}

func (cfg Config) partitionCount(rows int) int {
	n := cfg.PartitionCountMin
	if n < 1 {
		n = 1
	}
	if cfg.BucketSize > 0 && rows > cfg.BucketSize {
		if byBucket := rows / cfg.BucketSize; byBucket > n {
			n = byBucket
		}
	}
	return n
}

// chooseStrategy implements spec.md §4.5's choice rule: Sample-Range
// when row count exceeds 10x the bucket size, Global Sort otherwise.
func (cfg Config) chooseStrategy(leftRows, rightRows int) Strategy {
	if cfg.Strategy != Auto {
		return cfg.Strategy
	}
	threshold := 10 * cfg.BucketSize
	rows := leftRows
	if rightRows > rows {
		rows = rightRows
	}
	if threshold > 0 && rows > threshold {
		return SampleRange
	}
	return GlobalSort
}
