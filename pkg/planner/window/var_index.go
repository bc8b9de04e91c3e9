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

package window

import (
	"fmt"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/intset"
)

type varKey struct {
	varNo int
	attNo int
}

// VarIndex gives a dense index to every column referenced by a target list.
type VarIndex struct {
	index map[varKey]int
	vars  []*expression.Var
}

// BuildVarIndex indexes the current-level vars of tlist in first occurrence
// order.
func BuildVarIndex(q *query.Query, tlist []*expression.TargetEntry) (*VarIndex, error) {
	vi := &VarIndex{index: make(map[varKey]int)}
	for _, te := range tlist {
		for _, v := range expression.PullVars(te.Expr) {
			if err := vi.add(q, v); err != nil {
				return nil, err
			}
		}
	}
	return vi, nil
}

func (vi *VarIndex) add(q *query.Query, v *expression.Var) error {
	key := varKey{varNo: v.VarNo, attNo: v.AttNo}
	if _, ok := vi.index[key]; ok {
		return nil
	}
	rte := q.RTE(v.VarNo)
	if rte == nil {
		return plannererrors.ErrInternal.GenWithStackByArgs(fmt.Sprintf("var %s references no range table entry", v))
	}
	if v.AttNo <= 0 || v.AttNo > rte.NumColumns() {
		return plannererrors.ErrInternal.GenWithStackByArgs(fmt.Sprintf("attribute number %d out of range for %s", v.AttNo, rte.Name))
	}
	vi.index[key] = len(vi.vars)
	vi.vars = append(vi.vars, expression.NewVar(v.VarNo, v.AttNo, v.RetType))
	return nil
}

// IndexOf returns the dense index of v.
func (vi *VarIndex) IndexOf(v *expression.Var) (int, bool) {
	if v.LevelsUp > 0 {
		return 0, false
	}
	idx, ok := vi.index[varKey{varNo: v.VarNo, attNo: v.AttNo}]
	return idx, ok
}

// VarAt returns the var with dense index i.
func (vi *VarIndex) VarAt(i int) *expression.Var {
	return vi.vars[i]
}

// Len returns the number of indexed vars.
func (vi *VarIndex) Len() int {
	return len(vi.vars)
}

// VarSet returns the indexes of the vars used by e.
func (vi *VarIndex) VarSet(e expression.Expression) intset.FastIntSet {
	var s intset.FastIntSet
	for _, v := range expression.PullVars(e) {
		if idx, ok := vi.IndexOf(v); ok {
			s.Insert(idx)
		}
	}
	return s
}
