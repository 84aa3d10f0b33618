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

package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/iejoin/pkg/common"
)

func schemaXY() common.Schema {
	return common.Schema{Columns: []common.Column{
		{Name: "x", Type: common.CTypeInt64},
		{Name: "y", Type: common.CTypeInt64},
	}}
}

func validPred() AndPredicate {
	return AndPredicate{
		Ineq1: BinaryExpr{Op: common.OpLt, L: ColumnRef{Column: "x"}, R: ColumnRef{Column: "x"}},
		Ineq2: BinaryExpr{Op: common.OpGt, L: ColumnRef{Column: "y"}, R: ColumnRef{Column: "y"}},
	}
}

func Test_Validate_AcceptsWellFormedJoin(t *testing.T) {
	n := NewIEJoin(NewScan("left", schemaXY()), NewScan("right", schemaXY()), validPred(), StrategyAuto)
	require.NoError(t, Validate(n))
}

func Test_Validate_RejectsInvalidOperator(t *testing.T) {
	pred := validPred()
	pred.Ineq1.Op = common.OpInvalid
	n := NewIEJoin(NewScan("left", schemaXY()), NewScan("right", schemaXY()), pred, StrategyAuto)
	assert.ErrorIs(t, Validate(n), common.ErrUnsupportedPredicate)
}

func Test_Validate_RejectsMissingPayload(t *testing.T) {
	n := &Node{Kind: KindIEJoin}
	assert.ErrorIs(t, Validate(n), common.ErrUnsupportedPredicate)

	scan := &Node{Kind: KindScan}
	assert.ErrorIs(t, Validate(scan), common.ErrUnsupportedPredicate)
}

func Test_Validate_RecursesIntoChildren(t *testing.T) {
	badChild := &Node{Kind: KindIEJoin}
	n := NewIEJoin(badChild, NewScan("right", schemaXY()), validPred(), StrategyAuto)
	assert.ErrorIs(t, Validate(n), common.ErrUnsupportedPredicate)
}

func Test_Print_IncludesScanNamesAndPredicate(t *testing.T) {
	n := NewIEJoin(NewScan("orders", schemaXY()), NewScan("shipments", schemaXY()), validPred(), StrategyGlobalSort)
	out := Print(n)
	assert.True(t, strings.Contains(out, "orders"))
	assert.True(t, strings.Contains(out, "shipments"))
	assert.True(t, strings.Contains(out, "GlobalSort"))
	assert.True(t, strings.Contains(out, "x < x"))
	assert.True(t, strings.Contains(out, "y > y"))
}
