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

package summary

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/iejoin/pkg/batch"
)

// BuildAll summarises every partition in parts concurrently, one
// goroutine per partition, bounded by maxWorkers (spec.md §5: "all C3
// calls are independent and may run in parallel"). The first error
// from any partition cancels the rest and is returned; the driver
// treats a failed summarisation as fatal for the whole join.
func BuildAll(ctx context.Context, parts []*batch.Batch, xCol, yCol string, xSorted, ySorted bool, maxWorkers int) ([]PartitionSummary, error) {
	out := make([]PartitionSummary, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	for i, p := range parts {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := Build(p, i, xCol, yCol, xSorted, ySorted)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
