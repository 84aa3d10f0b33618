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

// Package plan is the logical plan node consumed by pkg/iedriver
// (spec.md §6.1). The source mingles plan nodes and expressions
// through shared pointers with down-casting; here that collapses to a
// tagged sum type dispatched on Kind, the way the teacher collapses
// its own deep BinaryExpr/BooleanBinaryExpr inheritance chain.
package plan

import (
	"fmt"

	"github.com/daviszhen/iejoin/pkg/common"
)

// Kind tags which variant a Node holds.
type Kind int

const (
	KindScan Kind = iota
	KindIEJoin
)

func (k Kind) String() string {
	switch k {
	case KindScan:
		return "Scan"
	case KindIEJoin:
		return "IEJoin"
	default:
		return "?"
	}
}

// ColumnRef names a column by name; its side is given by where it sits
// in a BinaryExpr (L is the left relation, R the right).
type ColumnRef struct {
	Column string
}

// BinaryExpr is one inequality: L op R. Collapses the teacher's
// BinaryExpr -> BooleanBinaryExpr -> Eq/Lt/... chain to a single
// struct parameterized by common.Op, since the core only ever needs
// the four inequality operators.
type BinaryExpr struct {
	Op common.Op
	L  ColumnRef
	R  ColumnRef
}

// AndPredicate is exactly AND(ineq1, ineq2), the only predicate shape
// the driver accepts (spec.md §6.1).
type AndPredicate struct {
	Ineq1 BinaryExpr
	Ineq2 BinaryExpr
}

// Strategy mirrors iedriver.Strategy at the plan level, so a plan can
// be built and printed without importing pkg/iedriver.
type Strategy int

const (
	StrategyAuto Strategy = iota
	StrategyGlobalSort
	StrategySampleRange
)

// ScanNode names a base relation: a source identifier and schema,
// resolved against a pkg/source.DataSource by the caller.
type ScanNode struct {
	Source string
	Schema common.Schema
}

// IEJoinNode pairs a left and right plan under an AndPredicate.
type IEJoinNode struct {
	Left      *Node
	Right     *Node
	Predicate AndPredicate
	Strategy  Strategy
}

// Node is the tagged-union plan node: exactly one of Scan/IEJoin is
// meaningful, selected by Kind. Only the variants the core needs
// exist (spec.md §9's "Design Notes").
type Node struct {
	Kind   Kind
	Scan   *ScanNode
	IEJoin *IEJoinNode
}

// NewScan builds a leaf scan node.
func NewScan(source string, schema common.Schema) *Node {
	return &Node{Kind: KindScan, Scan: &ScanNode{Source: source, Schema: schema}}
}

// NewIEJoin builds an IEJoin node over two subplans.
func NewIEJoin(left, right *Node, pred AndPredicate, strategy Strategy) *Node {
	return &Node{Kind: KindIEJoin, IEJoin: &IEJoinNode{Left: left, Right: right, Predicate: pred, Strategy: strategy}}
}

// Validate rejects any node whose IEJoin predicate is not exactly
// AND(ineq1, ineq2) over the four inequality operators (spec.md §6.1).
func Validate(n *Node) error {
	switch n.Kind {
	case KindScan:
		if n.Scan == nil {
			return fmt.Errorf("scan node missing payload: %w", common.ErrUnsupportedPredicate)
		}
		return nil
	case KindIEJoin:
		j := n.IEJoin
		if j == nil {
			return fmt.Errorf("ie-join node missing payload: %w", common.ErrUnsupportedPredicate)
		}
		if !j.Predicate.Ineq1.Op.Valid() || !j.Predicate.Ineq2.Op.Valid() {
			return fmt.Errorf("predicate op1=%v op2=%v: %w", j.Predicate.Ineq1.Op, j.Predicate.Ineq2.Op, common.ErrUnsupportedPredicate)
		}
		if err := Validate(j.Left); err != nil {
			return err
		}
		return Validate(j.Right)
	default:
		return fmt.Errorf("unknown node kind %v: %w", n.Kind, common.ErrUnsupportedPredicate)
	}
}
