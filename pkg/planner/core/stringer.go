// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"fmt"
	"strings"

	"github.com/pingcap/tipb/go-tipb"
)

// ToString explains a Plan, returns description string.
func ToString(p PhysicalPlan) string {
	strs, _ := toString(p, []string{}, []int{})
	return strings.Join(strs, "->")
}

func needIncludeChildrenString(plan PhysicalPlan) bool {
	return len(plan.Children()) > 1
}

func toString(in PhysicalPlan, strs []string, idxs []int) ([]string, []int) {
	if needIncludeChildrenString(in) {
		idxs = append(idxs, len(strs))
	}
	switch x := in.(type) {
	case *PhysicalShareInput:
		// The producer is written out under the first consumer only.
		if x.Consumer == 0 {
			for _, c := range x.Children() {
				strs, idxs = toString(c, strs, idxs)
			}
		}
	default:
		for _, c := range in.Children() {
			strs, idxs = toString(c, strs, idxs)
		}
	}

	var str string
	switch x := in.(type) {
	case *PhysicalTableScan:
		str = fmt.Sprintf("Table(%s)", x.Table.Name)
	case *PhysicalProjection:
		str = "Projection"
	case *PhysicalSort:
		str = "Sort(" + explainPathKeys(x.ByItems) + ")"
	case *PhysicalExchangeSender:
		switch x.ExchangeType {
		case tipb.ExchangeType_Hash:
			cols := make([]string, 0, len(x.HashCols))
			for _, c := range x.HashCols {
				cols = append(cols, fmt.Sprintf("#%d", c))
			}
			str = "Redistribute(" + strings.Join(cols, ", ") + ")"
		case tipb.ExchangeType_Broadcast:
			str = "Broadcast"
		default:
			str = "Gather"
			if len(x.MergeKeys) > 0 {
				str += "(" + explainPathKeys(x.MergeKeys) + ")"
			}
		}
	case *PhysicalWindow:
		str = fmt.Sprintf("Window(%s)", x.ExplainInfo())
	case *PhysicalAgg:
		if len(x.GroupBy) > 0 {
			str = "StreamAgg"
		} else {
			str = "Agg"
		}
	case *PhysicalShareInput:
		str = fmt.Sprintf("Share(%d:%d)", x.ShareID, x.Consumer)
	case *PhysicalSubqueryScan:
		str = fmt.Sprintf("%s(%d)", x.Alias, x.VarNo)
	case *PhysicalMergeJoin:
		var children []string
		strs, idxs, children = popChildren(strs, idxs)
		str = "MergeJoin{" + strings.Join(children, "->") + "}"
		for _, k := range x.Keys {
			str += fmt.Sprintf("(%s,%s)", k.Outer, k.Inner)
		}
	case *PhysicalHashJoin:
		var children []string
		strs, idxs, children = popChildren(strs, idxs)
		str = "HashJoin{" + strings.Join(children, "->") + "}"
		for _, k := range x.Keys {
			str += fmt.Sprintf("(%s,%s)", k.Outer, k.Inner)
		}
	case *PhysicalNestLoop:
		var children []string
		strs, idxs, children = popChildren(strs, idxs)
		str = "NestLoop{" + strings.Join(children, "->") + "}"
	default:
		str = fmt.Sprintf("%T", in)
	}
	strs = append(strs, str)
	return strs, idxs
}

func popChildren(strs []string, idxs []int) ([]string, []int, []string) {
	last := len(idxs) - 1
	idx := idxs[last]
	children := append([]string(nil), strs[idx:]...)
	return strs[:idx], idxs[:last], children
}
