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
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/pingcap/errors"
)

// buildLowerTList computes the target list requested from the common
// subquery: the flattened vars of the projection and of the frame offsets,
// followed by the partition and order keys of every specification.
func buildLowerTList(wctx *WindowContext) error {
	lower := expression.FlattenTargetList(wctx.OrigTList)
	for _, s := range wctx.SpecInfos {
		lower = expression.AddToFlatTargetList(lower, expression.PullVars(s.Frame.StartOffset))
		lower = expression.AddToFlatTargetList(lower, expression.PullVars(s.Frame.EndOffset))
	}
	for _, te := range lower {
		v := te.Expr.(*expression.Var)
		if rte := wctx.Query.RTE(v.VarNo); rte != nil && v.AttNo >= 1 && v.AttNo <= rte.NumColumns() {
			te.ResName = rte.Columns[v.AttNo-1].Name
		}
	}
	wctx.LowerTList = lower

	keyed := expression.CloneTargetList(lower)
	wctx.SortRefResNo = make(map[int]int)
	for _, s := range wctx.SpecInfos {
		for _, clauses := range [][]*expression.SortGroupClause{s.PartKey, s.Order} {
			for _, sc := range clauses {
				var err error
				keyed, err = wctx.addKeyEntry(keyed, sc.TLESortGroupRef)
				if err != nil {
					return err
				}
			}
		}
	}
	wctx.KeyedLowerTList = keyed

	for _, w := range wctx.WindowInfos {
		w.PartKeyAttrs = make([]int, 0, w.PartKeyLen)
		for _, sc := range w.PartClauses {
			w.PartKeyAttrs = append(w.PartKeyAttrs, wctx.SortRefResNo[sc.TLESortGroupRef])
		}
		keys, err := wctx.pathKeys(w.SortClause)
		if err != nil {
			return err
		}
		w.SortKeys = keys
	}

	wctx.UpperVarAttrNos = make([]int, wctx.VarIndex.Len())
	for i := range wctx.UpperVarAttrNos {
		te := expression.TargetListMember(keyed, wctx.VarIndex.VarAt(i))
		if te == nil {
			return errors.Trace(plannererrors.ErrInternal.GenWithStackByArgs("var " + wctx.VarIndex.VarAt(i).String() + " missing from the window input"))
		}
		wctx.UpperVarAttrNos[i] = te.ResNo
	}
	return nil
}

func (wctx *WindowContext) addKeyEntry(keyed []*expression.TargetEntry, ref int) ([]*expression.TargetEntry, error) {
	if _, ok := wctx.SortRefResNo[ref]; ok {
		return keyed, nil
	}
	src := expression.GetTLEBySortGroupRef(wctx.Query.TargetList, ref)
	if src == nil {
		return nil, plannererrors.ErrInternal.GenWithStackByArgs("sort/group reference has no target entry")
	}
	if expression.ContainsWindowFunc(src.Expr) {
		return nil, plannererrors.ErrWindowNestedCall.GenWithStackByArgs()
	}
	for _, te := range keyed {
		if (te.SortGroupRef == ref || te.SortGroupRef == 0) && te.Expr.Equal(src.Expr) {
			te.SortGroupRef = ref
			wctx.SortRefResNo[ref] = te.ResNo
			return keyed, nil
		}
	}
	keyed = append(keyed, &expression.TargetEntry{
		Expr:         src.Expr.Clone(),
		ResNo:        len(keyed) + 1,
		ResName:      src.ResName,
		SortGroupRef: ref,
		ResJunk:      true,
	})
	wctx.SortRefResNo[ref] = len(keyed)
	return keyed, nil
}
