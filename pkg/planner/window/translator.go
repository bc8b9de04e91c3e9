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
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
)

// translateTList rewrites the projection of the query over the output of
// the window plan. Window calls are replaced by their result expressions
// without looking at their arguments.
func translateTList(wctx *WindowContext) ([]*expression.TargetEntry, error) {
	res := make([]*expression.TargetEntry, 0, len(wctx.UpperTList))
	for _, te := range wctx.UpperTList {
		expr, err := expression.Mutate(te.Expr, func(e expression.Expression) (expression.Expression, bool, error) {
			switch x := e.(type) {
			case *expression.WindowFunc:
				r, err := wctx.refOfPlaceholder(x)
				if err != nil {
					return nil, true, err
				}
				if r.ResultExpr == nil {
					return nil, true, plannererrors.ErrInternal.GenWithStackByArgs("no result for window call " + r.Ref.String())
				}
				res, err := wctx.remapCoplanVars(r.ResultExpr)
				return res, true, err
			case *expression.Var:
				if x.LevelsUp > 0 {
					return x, true, nil
				}
				idx, ok := wctx.VarIndex.IndexOf(x)
				if !ok || idx >= len(wctx.UpperVarAttrNos) {
					return nil, true, plannererrors.ErrInternal.GenWithStackByArgs(fmt.Sprintf("var %s has no column in the window plan", x))
				}
				res, err := wctx.remapCoplanVars(expression.NewVar(wctx.UpperVarNo, wctx.UpperVarAttrNos[idx], x.RetType))
				return res, true, err
			}
			return nil, false, nil
		})
		if err != nil {
			return nil, err
		}
		nte := *te
		nte.Expr = expr
		res = append(res, &nte)
	}
	return res, nil
}

// remapCoplanVars turns coplan columns into columns of the relation that
// joins every coplan.
func (wctx *WindowContext) remapCoplanVars(e expression.Expression) (expression.Expression, error) {
	if wctx.coplanOffsets == nil {
		return e.Clone(), nil
	}
	return expression.Mutate(e, func(n expression.Expression) (expression.Expression, bool, error) {
		v, ok := n.(*expression.Var)
		if !ok || v.LevelsUp > 0 {
			return nil, false, nil
		}
		off, ok := wctx.coplanOffsets[v.VarNo]
		if !ok {
			return nil, true, plannererrors.ErrInternal.GenWithStackByArgs(fmt.Sprintf("var %s references no coplan", v))
		}
		return expression.NewVar(1, off+v.AttNo, v.RetType), true, nil
	})
}
