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
	"fmt"

	"github.com/xlab/treeprint"
)

func (s Strategy) String() string {
	switch s {
	case StrategyGlobalSort:
		return "GlobalSort"
	case StrategySampleRange:
		return "SampleRange"
	default:
		return "Auto"
	}
}

func (b BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", b.L.Column, b.Op, b.R.Column)
}

// Print renders n as a tree, following Graph.String's
// NewWithRoot/AddMetaBranch/AddMetaNode pattern.
func Print(n *Node) string {
	tree := treeprint.NewWithRoot("Plan")
	addNode(tree, n)
	return tree.String()
}

func addNode(tree treeprint.Tree, n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindScan:
		tree.AddMetaNode("scan", fmt.Sprintf("%s (%d cols)", n.Scan.Source, len(n.Scan.Schema.Columns)))
	case KindIEJoin:
		j := n.IEJoin
		branch := tree.AddMetaBranch("ie-join", fmt.Sprintf("%s; strategy=%s", j.Predicate.String(), j.Strategy))
		addNode(branch.AddBranch("left"), j.Left)
		addNode(branch.AddBranch("right"), j.Right)
	default:
		tree.AddNode(fmt.Sprintf("unknown kind %v", n.Kind))
	}
}

func (p AndPredicate) String() string {
	return fmt.Sprintf("%s AND %s", p.Ineq1, p.Ineq2)
}
