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

package main

// RelationConfig names one side's data file and format, the join
// column pair comes from PredicateConfig (spec.md §4.1).
type RelationConfig struct {
	Path   string `tag:"path"`
	Format string `tag:"format"`
}

// PredicateConfig is one inequality half: "col op col" split into
// parts so toml/viper don't need an expression parser.
type PredicateConfig struct {
	LeftCol  string `tag:"leftCol"`
	Op       string `tag:"op"`
	RightCol string `tag:"rightCol"`
}

// JoinConfig names both relations and the AND(pred1, pred2) predicate
// the run evaluates (spec.md §6.1's AndPredicate, at the CLI layer).
type JoinConfig struct {
	Left  RelationConfig  `tag:"left"`
	Right RelationConfig  `tag:"right"`
	Pred1 PredicateConfig `tag:"pred1"`
	Pred2 PredicateConfig `tag:"pred2"`
}

// DriverConfig mirrors iedriver.Config's tunables (spec.md §6.4).
type DriverConfig struct {
	BucketSize          int     `tag:"bucketSize"`
	PartitionCountMin   int     `tag:"partitionCountMin"`
	SampleRatio         float64 `tag:"sampleRatio"`
	PruneMode           string  `tag:"pruneMode"`
	DeterministicOutput bool    `tag:"deterministicOutput"`
	MaxWorkers          int     `tag:"maxWorkers"`
	Seed                int64   `tag:"seed"`
	Strategy            string  `tag:"strategy"`
}

// OutputConfig names where and how the result pairs are written.
type OutputConfig struct {
	Path         string `tag:"path"`
	NeedHeadLine bool   `tag:"needHeadline"`
}

// DebugOptions mirrors the teacher's own DebugOptions shape, trimmed
// to what this CLI can actually act on.
type DebugOptions struct {
	PrintPlan   bool `tag:"printPlan"`
	PrintResult bool `tag:"printResult"`
}

// Config is the root of iejoin.toml.
type Config struct {
	Join   JoinConfig   `tag:"join"`
	Driver DriverConfig `tag:"driver"`
	Output OutputConfig `tag:"output"`
	Debug  DebugOptions `tag:"debug"`
}
