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

package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/daviszhen/iejoin/pkg/batch"
	"github.com/daviszhen/iejoin/pkg/common"
)

// CSV reads a delimited text file of int64 columns into a batch.Batch
// (spec.md §4.1's "read CSV/Parquet", grounded on the teacher's
// csv.Reader + Comma field idiom in run.go/executor_scan.go). Columns
// are named by CSV header; the file must carry an "id" column.
type CSV struct {
	Path   string
	Comma  rune
	schema common.Schema
}

// NewCSV builds a CSV source for path, reading its header line to fix
// the schema. Comma defaults to ',' when zero.
func NewCSV(path string, comma rune) (*CSV, error) {
	if comma == 0 {
		comma = ','
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	schema := common.Schema{}
	for _, name := range header {
		schema.Columns = append(schema.Columns, common.Column{Name: name, Type: common.CTypeInt64})
	}
	if schema.IndexOf("id") < 0 {
		return nil, fmt.Errorf("%s: header missing id column: %w", path, common.ErrArityMismatch)
	}
	return &CSV{Path: path, Comma: comma, schema: schema}, nil
}

// Schema returns the column schema fixed by the CSV header.
func (c *CSV) Schema() common.Schema {
	return c.schema
}

// Scan reads the whole file (minus its header) into a batch, keeping
// only the named columns (id is implicit). projection == nil keeps
// every column.
func (c *CSV) Scan(ctx context.Context, projection []string) (*batch.Batch, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = c.Comma
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read header of %s: %w", c.Path, err)
	}

	bld := batch.NewBuilder(c.schema)
	row := make([]common.Value, len(c.schema.Columns))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row of %s: %w", c.Path, err)
		}
		if len(record) != len(row) {
			return nil, fmt.Errorf("%s: row width %d != header width %d: %w", c.Path, len(record), len(row), common.ErrArityMismatch)
		}
		for i, field := range record {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: column %q value %q: %w", c.Path, c.schema.Columns[i].Name, field, err)
			}
			row[i] = v
		}
		if err := bld.AppendRow(row); err != nil {
			return nil, err
		}
	}

	full, err := bld.Build()
	if err != nil {
		return nil, err
	}
	if projection == nil {
		return full, nil
	}
	return full.Project(projection)
}
