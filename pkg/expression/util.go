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

package expression

// PullVars collects the current-level Vars of e in pre-order, duplicates
// included.
func PullVars(e Expression) []*Var {
	var vars []*Var
	Walk(e, func(n Expression) bool {
		if v, ok := n.(*Var); ok && v.LevelsUp == 0 {
			vars = append(vars, v)
		}
		return true
	})
	return vars
}

// FlattenTargetList returns one target entry per distinct current-level Var
// in the given target list, in first occurrence order. Window and aggregate
// calls are descended into.
func FlattenTargetList(tlist []*TargetEntry) []*TargetEntry {
	var res []*TargetEntry
	for _, te := range tlist {
		res = AddToFlatTargetList(res, PullVars(te.Expr))
	}
	return res
}

// AddToFlatTargetList appends an entry for each var not yet present.
func AddToFlatTargetList(tlist []*TargetEntry, vars []*Var) []*TargetEntry {
	for _, v := range vars {
		if TargetListMember(tlist, v) != nil {
			continue
		}
		tlist = append(tlist, &TargetEntry{
			Expr:  v.Clone(),
			ResNo: len(tlist) + 1,
		})
	}
	return tlist
}

// TargetListMember returns the first entry whose expression equals e.
func TargetListMember(tlist []*TargetEntry, e Expression) *TargetEntry {
	for _, te := range tlist {
		if te.Expr.Equal(e) {
			return te
		}
	}
	return nil
}

// ContainsVolatile reports whether e calls a volatile function.
func ContainsVolatile(e Expression) bool {
	return WalkAny(e, func(n Expression) bool {
		f, ok := n.(*FuncExpr)
		return ok && f.Volatile
	})
}

// ContainsWindowFunc reports whether e contains a window call.
func ContainsWindowFunc(e Expression) bool {
	return WalkAny(e, func(n Expression) bool {
		_, ok := n.(*WindowFunc)
		return ok
	})
}

// ContainsOuterVar reports whether e references an enclosing query.
func ContainsOuterVar(e Expression) bool {
	return WalkAny(e, func(n Expression) bool {
		v, ok := n.(*Var)
		return ok && v.LevelsUp > 0
	})
}

// IsConstant reports whether e is a Constant node.
func IsConstant(e Expression) bool {
	_, ok := e.(*Constant)
	return ok
}
