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

// Package source holds the external collaborator contracts
// (spec.md §6.3): DataSource materializes a relation into a
// batch.Batch before a join runs; SortOperator/SampleOperator document
// what the driver expects of a relation's own sort/sample support,
// satisfied directly by batch.Batch.
package source

import (
	"context"
	"math/rand"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
)

// DataSource scans a relation into a fully materialized batch. No
// streaming mode exists: every join requires both sides resident
// before it starts (spec.md "Non-goals").
type DataSource interface {
	Scan(ctx context.Context, projection []string) (*batch.Batch, error)
	Schema() common.Schema
}

// SortOperator documents the sort contract a relation must satisfy to
// participate in Strategy A (Global Sort). batch.Batch.SortBy
// satisfies this directly; no adapter type is needed.
type SortOperator interface {
	SortBy(col string, descending bool) (*batch.Batch, error)
}

// SampleOperator documents the sample contract Strategy B (Sample-
// Range) needs to build approximate boundaries. batch.Batch.Sample
// satisfies this directly.
type SampleOperator interface {
	Sample(rng *rand.Rand, n int) *batch.Batch
}

var (
	_ SortOperator   = (*batch.Batch)(nil)
	_ SampleOperator = (*batch.Batch)(nil)
)
