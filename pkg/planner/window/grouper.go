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
	"slices"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"go.uber.org/zap"
)

// groupSpecs splits the sorted SpecInfos into runs that one window operator
// can evaluate: equal partition sets where each order is a prefix of the
// next one.
func groupSpecs(wctx *WindowContext) error {
	wctx.WindowInfos = wctx.WindowInfos[:0]
	var cur *WindowInfo
	for i, s := range wctx.SpecInfos {
		if cur != nil {
			last := wctx.SpecInfos[i-1]
			if s.PartSet.Equals(last.PartSet) && expression.IsSortPrefixOf(last.UniqueOrder, s.UniqueOrder) {
				cur.NumSpecIndex++
				s.WindowIndex = cur.Index
				continue
			}
		}
		cur = &WindowInfo{
			Index:          len(wctx.WindowInfos),
			FirstSpecIndex: i,
			NumSpecIndex:   1,
			PartSet:        s.PartSet.Copy(),
		}
		s.WindowIndex = cur.Index
		wctx.WindowInfos = append(wctx.WindowInfos, cur)
	}

	for _, w := range wctx.WindowInfos {
		if err := wctx.finishWindowInfo(w); err != nil {
			return err
		}
		wctx.logger.Debug("window group",
			zap.Int("window", w.Index),
			zap.Int("specs", w.NumSpecIndex),
			zap.String("sortClause", sortClauseString(w.SortClause)),
			zap.Bool("needPartKey", w.NeedPartKey),
			zap.Bool("needAuxCount", w.NeedAuxCount))
	}
	return checkPrefixInvariant(wctx)
}

func (wctx *WindowContext) finishWindowInfo(w *WindowInfo) error {
	members := wctx.SpecInfos[w.FirstSpecIndex : w.FirstSpecIndex+w.NumSpecIndex]
	seen := make(map[int]struct{}, len(members[0].PartKey))
	for _, sc := range members[0].PartKey {
		if _, ok := seen[sc.TLESortGroupRef]; ok {
			continue
		}
		seen[sc.TLESortGroupRef] = struct{}{}
		w.PartClauses = append(w.PartClauses, sc)
	}
	slices.SortStableFunc(w.PartClauses, func(a, b *expression.SortGroupClause) int {
		return a.TLESortGroupRef - b.TLESortGroupRef
	})
	w.PartKeyLen = len(w.PartClauses)
	w.SortClause = append(slices.Clone(w.PartClauses), members[len(members)-1].UniqueOrder...)

	for _, s := range members {
		order := s.UniqueOrder
		if len(order) == 0 && len(s.Order) > 0 {
			order = s.Order[:1]
		}
		w.Levels = append(w.Levels, &WindowLevel{SpecIndex: s.SpecIndex, Order: order, Frame: s.Frame})
		s.RefSet.ForEach(func(i int) {
			r := wctx.RefInfos[i]
			w.NeedPartKey = w.NeedPartKey || r.needPartKey()
			w.NeedAuxCount = w.NeedAuxCount || r.needAuxCount()
		})
	}

	w.PartKeyEqOps = make([]string, 0, w.PartKeyLen)
	for _, sc := range w.PartClauses {
		w.PartKeyEqOps = append(w.PartKeyEqOps, wctx.equalityOp(sc))
	}
	return nil
}

// equalityOp returns the equality operator of a partition clause, or "" when
// its type has none.
func (wctx *WindowContext) equalityOp(sc *expression.SortGroupClause) string {
	if sc.EqOp != "" {
		return sc.EqOp
	}
	te := expression.GetTLEBySortGroupRef(wctx.Query.TargetList, sc.TLESortGroupRef)
	if te == nil {
		return ""
	}
	op, _ := types.EqualityOpForOrderingOp(te.Expr.GetType(), sc.SortOp)
	return op
}

func checkPrefixInvariant(wctx *WindowContext) error {
	for _, w := range wctx.WindowInfos {
		order := w.SortClause[w.PartKeyLen:]
		for _, s := range wctx.SpecInfos[w.FirstSpecIndex : w.FirstSpecIndex+w.NumSpecIndex] {
			if !s.PartSet.Equals(w.PartSet) || !expression.IsSortPrefixOf(s.UniqueOrder, order) {
				return plannererrors.ErrInternal.GenWithStackByArgs(
					fmt.Sprintf("window specification %d is not a prefix of window %d", s.SpecIndex, w.Index))
			}
		}
	}
	return nil
}

func sortClauseString(clauses []*expression.SortGroupClause) string {
	s := "["
	for i, sc := range clauses {
		if i > 0 {
			s += ", "
		}
		s += sc.String()
	}
	return s + "]"
}
