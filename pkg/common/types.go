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

package common

// RowID is a stable, non-negative 64-bit row identifier, unique across
// the logical relation a batch was scanned from.
type RowID = int64

// Value is the scalar type comparable under the join predicates.
// Integer suffices for the core (see spec.md "Value type").
type Value = int64

// ColumnTypeID names the (trivial, single-member) set of column types
// the core supports. Left as an enum, not a bare bool, so the schema
// can grow a second member without touching every call site.
type ColumnTypeID int

const (
	CTypeInvalid ColumnTypeID = iota
	CTypeInt64
)

func (t ColumnTypeID) String() string {
	switch t {
	case CTypeInt64:
		return "int64"
	default:
		return "invalid"
	}
}

// Column describes one named, typed column of a Schema.
type Column struct {
	Name string
	Type ColumnTypeID
}

// Schema is the ordered list of (name, type) pairs a Batch carries.
type Schema struct {
	Columns []Column
}

// IndexOf returns the position of name within the schema, or -1.
func (s Schema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the ordered column names of the schema.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
