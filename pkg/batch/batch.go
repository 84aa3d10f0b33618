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

// Package batch implements the columnar batch (C1): a schema plus
// per-column int64 vectors, supporting the handful of operations the
// IEJoin core actually needs — random access, stable sort-by-column,
// filter, sample, and equal-sized partitioning. All operations return
// new batches; Batch itself carries no observable side effects once
// constructed (spec.md "Ownership").
package batch

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/util"
)

// Batch is an ordered sequence of rows, one []int64 per column. An
// "id" column is always present (spec.md "Batch" invariants).
type Batch struct {
	schema common.Schema
	cols   [][]common.Value
}

// New builds a Batch directly from a schema and column data. cols must
// have one slice per schema column, all of equal length, and the
// schema must contain an "id" column.
func New(schema common.Schema, cols [][]common.Value) (*Batch, error) {
	if schema.IndexOf("id") < 0 {
		return nil, fmt.Errorf("batch schema missing id column: %w", common.ErrArityMismatch)
	}
	if len(cols) != len(schema.Columns) {
		return nil, fmt.Errorf("column count %d != schema width %d: %w", len(cols), len(schema.Columns), common.ErrArityMismatch)
	}
	n := -1
	for _, c := range cols {
		if n == -1 {
			n = len(c)
		} else if len(c) != n {
			return nil, fmt.Errorf("ragged columns (%d vs %d): %w", len(c), n, common.ErrArityMismatch)
		}
	}
	return &Batch{schema: schema, cols: cols}, nil
}

// Schema returns the batch's column schema.
func (b *Batch) Schema() common.Schema {
	return b.schema
}

// RowCount returns the number of rows in the batch.
func (b *Batch) RowCount() int {
	if len(b.cols) == 0 {
		return 0
	}
	return len(b.cols[0])
}

// ColIndex returns the position of a named column, or ErrNoSuchColumn.
func (b *Batch) ColIndex(name string) (int, error) {
	idx := b.schema.IndexOf(name)
	if idx < 0 {
		return 0, fmt.Errorf("column %q: %w", name, common.ErrNoSuchColumn)
	}
	return idx, nil
}

// Column returns a borrowed view of column k's values.
func (b *Batch) Column(k int) []common.Value {
	return b.cols[k]
}

// ColumnByName is Column(ColIndex(name)).
func (b *Batch) ColumnByName(name string) ([]common.Value, error) {
	idx, err := b.ColIndex(name)
	if err != nil {
		return nil, err
	}
	return b.Column(idx), nil
}

// Row returns a freshly allocated copy of row i: one value per column,
// in schema order.
func (b *Batch) Row(i int) []common.Value {
	row := make([]common.Value, len(b.cols))
	for k, c := range b.cols {
		row[k] = c[i]
	}
	return row
}

// IDs returns the batch's id column.
func (b *Batch) IDs() []common.RowID {
	idx := b.schema.IndexOf("id")
	return b.cols[idx]
}

// Project returns a new batch containing only the named columns (id
// is implicitly included if not already named), in the order given.
func (b *Batch) Project(names []string) (*Batch, error) {
	want := names
	if b.schema.IndexOf("id") >= 0 {
		hasID := false
		for _, n := range names {
			if n == "id" {
				hasID = true
				break
			}
		}
		if !hasID {
			want = append([]string{"id"}, names...)
		}
	}
	schema := common.Schema{}
	cols := make([][]common.Value, 0, len(want))
	for _, name := range want {
		idx, err := b.ColIndex(name)
		if err != nil {
			return nil, err
		}
		schema.Columns = append(schema.Columns, common.Column{Name: name, Type: common.CTypeInt64})
		cols = append(cols, b.cols[idx])
	}
	return &Batch{schema: schema, cols: cols}, nil
}

// SortBy returns a new batch with rows reordered by column `name`,
// stable: ties break by original position (spec.md "sort_by").
func (b *Batch) SortBy(name string, descending bool) (*Batch, error) {
	idx, err := b.ColIndex(name)
	if err != nil {
		return nil, err
	}
	n := b.RowCount()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	key := b.cols[idx]
	sort.SliceStable(perm, func(i, j int) bool {
		a, c := key[perm[i]], key[perm[j]]
		if descending {
			return a > c
		}
		return a < c
	})
	return b.reorder(perm), nil
}

// reorder builds a new batch whose rows are b's rows taken in perm
// order. perm is always built internally from in-range row indices
// (SortBy's identity permutation, Filter's kept subset, Sample's and
// Partition's row ranges); an out-of-bounds entry is a caller bug, not
// a data problem, so it is asserted rather than returned as an error.
func (b *Batch) reorder(perm []int) *Batch {
	n := b.RowCount()
	newCols := make([][]common.Value, len(b.cols))
	for k, c := range b.cols {
		nc := make([]common.Value, len(perm))
		for i, p := range perm {
			util.AssertFunc(p >= 0 && p < n)
			nc[i] = c[p]
		}
		newCols[k] = nc
	}
	return &Batch{schema: b.schema, cols: newCols}
}

// RowPredicate evaluates a row (in schema order) to keep/drop it.
type RowPredicate func(row []common.Value) bool

// Filter returns a new batch containing only the rows for which pred
// returns true.
func (b *Batch) Filter(pred RowPredicate) *Batch {
	n := b.RowCount()
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if pred(b.Row(i)) {
			keep = append(keep, i)
		}
	}
	return b.reorder(keep)
}

// Sample returns a new batch of n rows drawn without replacement,
// uniformly, using rng (spec.md "sample").
func (b *Batch) Sample(rng *rand.Rand, n int) *Batch {
	total := b.RowCount()
	if n > total {
		n = total
	}
	idx := util.SampleIndices(rng, total, n)
	return b.reorder(idx)
}

// Partition splits the row sequence into n contiguous chunks whose
// sizes differ by at most one (spec.md "partition").
func (b *Batch) Partition(n int) []*Batch {
	total := b.RowCount()
	if n <= 0 {
		n = 1
	}
	out := make([]*Batch, 0, n)
	base := total / n
	rem := total % n
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		perm := make([]int, size)
		for j := range perm {
			perm[j] = start + j
		}
		out = append(out, b.reorder(perm))
		start += size
	}
	return out
}
