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

import (
	"cmp"
	"fmt"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/dgryski/go-farm"
)

func kindRank(e Expression) int {
	switch e.(type) {
	case nil:
		return 0
	case *Constant:
		return 1
	case *Var:
		return 2
	case *FuncExpr:
		return 3
	case *Aggref:
		return 4
	case *WindowFunc:
		return 5
	}
	return 6
}

// Compare is a total order over expressions that depends only on their
// content. Structurally equal expressions compare as 0. nil sorts first.
func Compare(a, b Expression) int {
	if c := cmp.Compare(kindRank(a), kindRank(b)); c != 0 || a == nil {
		return c
	}
	switch x := a.(type) {
	case *Constant:
		y := b.(*Constant)
		if c := cmp.Compare(x.RetType, y.RetType); c != 0 {
			return c
		}
		if x.IsNull || y.IsNull {
			return compareBool(x.IsNull, y.IsNull)
		}
		return compareValue(x.Value, y.Value)
	case *Var:
		y := b.(*Var)
		if c := cmp.Compare(x.LevelsUp, y.LevelsUp); c != 0 {
			return c
		}
		if c := cmp.Compare(x.VarNo, y.VarNo); c != 0 {
			return c
		}
		if c := cmp.Compare(x.AttNo, y.AttNo); c != 0 {
			return c
		}
		return cmp.Compare(x.RetType, y.RetType)
	case *FuncExpr:
		y := b.(*FuncExpr)
		if c := cmp.Compare(x.FuncName, y.FuncName); c != 0 {
			return c
		}
		if c := cmp.Compare(x.RetType, y.RetType); c != 0 {
			return c
		}
		if c := compareBool(x.Volatile, y.Volatile); c != 0 {
			return c
		}
		return compareExprs(x.Args, y.Args)
	case *Aggref:
		y := b.(*Aggref)
		if c := cmp.Compare(x.FuncName, y.FuncName); c != 0 {
			return c
		}
		if c := compareCallFlags(x.Distinct, y.Distinct, x.Star, y.Star, x.RetType, y.RetType); c != 0 {
			return c
		}
		if c := compareExprs(x.Args, y.Args); c != 0 {
			return c
		}
		return Compare(x.Filter, y.Filter)
	case *WindowFunc:
		y := b.(*WindowFunc)
		if c := cmp.Compare(x.FuncName, y.FuncName); c != 0 {
			return c
		}
		if c := cmp.Compare(x.WinRef, y.WinRef); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Stage, y.Stage); c != 0 {
			return c
		}
		if c := compareCallFlags(x.Distinct, y.Distinct, x.Star, y.Star, x.RetType, y.RetType); c != 0 {
			return c
		}
		if c := compareExprs(x.Args, y.Args); c != 0 {
			return c
		}
		return Compare(x.Filter, y.Filter)
	}
	return cmp.Compare(a.String(), b.String())
}

func compareCallFlags(d1, d2, s1, s2 bool, t1, t2 types.TypeCode) int {
	if c := compareBool(d1, d2); c != 0 {
		return c
	}
	if c := compareBool(s1, s2); c != 0 {
		return c
	}
	return cmp.Compare(t1, t2)
}

func compareExprs(a, b []Expression) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func compareValue(a, b any) int {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y)
		}
	}
	// Mixed representations of the same type: fall back to the text form.
	if c := cmp.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b)); c != 0 {
		return c
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Digest returns a stable 64-bit fingerprint of the expression text.
// A nil expression has digest 0.
func Digest(e Expression) uint64 {
	if e == nil {
		return 0
	}
	return farm.Fingerprint64([]byte(e.String()))
}
