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

package batch

import (
	"fmt"

	"github.com/daviszhen/iejoin/pkg/common"
)

// Builder accumulates rows for a fixed schema and produces an
// immutable Batch, the append-oriented counterpart to the teacher's
// Chunk.Init/append-row idiom. Used by pkg/source readers and tests.
type Builder struct {
	schema common.Schema
	cols   [][]common.Value
}

// NewBuilder creates a Builder for the given schema, which must
// include an "id" column.
func NewBuilder(schema common.Schema) *Builder {
	return &Builder{
		schema: schema,
		cols:   make([][]common.Value, len(schema.Columns)),
	}
}

// AppendRow appends one row, in schema order.
func (bld *Builder) AppendRow(row []common.Value) error {
	if len(row) != len(bld.cols) {
		return fmt.Errorf("row width %d != schema width %d: %w", len(row), len(bld.cols), common.ErrArityMismatch)
	}
	for i, v := range row {
		bld.cols[i] = append(bld.cols[i], v)
	}
	return nil
}

// Build finalizes the builder into a Batch.
func (bld *Builder) Build() (*Batch, error) {
	return New(bld.schema, bld.cols)
}
