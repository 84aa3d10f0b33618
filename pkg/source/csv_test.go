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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func Test_CSV_ScanFullFile(t *testing.T) {
	path := writeTempCSV(t, "rows.csv", "id,x,y\n0,1,6\n1,4,2\n2,2,9\n")
	src, err := NewCSV(path, ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "x", "y"}, src.Schema().Names())

	b, err := src.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, b.RowCount())
	assert.Equal(t, []int64{0, 1, 2}, b.IDs())
	xs, err := b.ColumnByName("x")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2}, xs)
}

func Test_CSV_ScanProjectsColumns(t *testing.T) {
	path := writeTempCSV(t, "rows.csv", "id,x,y\n0,1,6\n1,4,2\n")
	src, err := NewCSV(path, ',')
	require.NoError(t, err)

	b, err := src.Scan(context.Background(), []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "y"}, b.Schema().Names())
}

func Test_CSV_CustomDelimiter(t *testing.T) {
	path := writeTempCSV(t, "rows.tbl", "id|x|y\n0|10|20\n")
	src, err := NewCSV(path, '|')
	require.NoError(t, err)

	b, err := src.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, b.RowCount())
}

func Test_CSV_RejectsMissingIDColumn(t *testing.T) {
	path := writeTempCSV(t, "rows.csv", "x,y\n1,2\n")
	_, err := NewCSV(path, ',')
	assert.Error(t, err)
}

func Test_CSV_RejectsRaggedRow(t *testing.T) {
	path := writeTempCSV(t, "rows.csv", "id,x,y\n0,1\n")
	src, err := NewCSV(path, ',')
	require.NoError(t, err)
	_, err = src.Scan(context.Background(), nil)
	assert.Error(t, err)
}

func Test_CSV_RejectsNonIntegerField(t *testing.T) {
	path := writeTempCSV(t, "rows.csv", "id,x,y\n0,abc,2\n")
	src, err := NewCSV(path, ',')
	require.NoError(t, err)
	_, err = src.Scan(context.Background(), nil)
	assert.Error(t, err)
}

func Test_CSV_ScanRespectsCancellation(t *testing.T) {
	path := writeTempCSV(t, "rows.csv", "id,x,y\n0,1,6\n1,4,2\n")
	src, err := NewCSV(path, ',')
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Scan(ctx, nil)
	assert.Error(t, err)
}
