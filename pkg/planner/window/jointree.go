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
	"slices"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/metrics"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/pingcap/tipb/go-tipb"
	"go.uber.org/zap"
)

// assembleJoinTree joins the coplans left-deep in creation order. Window
// coplans join on the row key, aggregate coplans join their window coplan on
// the partition key. The output columns are the columns of every coplan in
// creation order.
func (wctx *WindowContext) assembleJoinTree() (core.PhysicalPlan, property.Locus, error) {
	first := wctx.Coplans[0]
	offsets := map[int]int{first.VarNo: 0}
	cur, locus := first.Plan, first.Locus
	tlist := coplanColumns(first, 0)
	metrics.WindowCoplanCounter.WithLabelValues(first.Type.String()).Inc()

	for _, c := range wctx.Coplans[1:] {
		width := len(tlist)
		offsets[c.VarNo] = width
		cols := append(slices.Clone(tlist), coplanColumns(c, width)...)
		metrics.WindowCoplanCounter.WithLabelValues(c.Type.String()).Inc()
		wctx.logger.Debug("join coplan",
			zap.Int("varno", c.VarNo),
			zap.Stringer("type", c.Type),
			zap.Stringer("locus", c.Locus))

		switch {
		case c.Type == CoplanWindow:
			keys := make([]core.JoinKey, 0, len(c.RowKeyAttrs))
			for j, a := range c.RowKeyAttrs {
				tp := c.TargetList[a-1].Expr.GetType()
				keys = append(keys, core.JoinKey{
					Outer: expression.NewVar(first.VarNo, first.RowKeyAttrs[j], tp),
					Inner: expression.NewVar(c.VarNo, a, tp),
					Op:    types.OpEQ,
				})
			}
			outer, inner, l := wctx.collocateJoin(cur, locus, first.RowKeyAttrs, c.Plan, c.Locus, c.RowKeyAttrs, width)
			cur, locus = core.PhysicalHashJoin{Keys: keys}.Init(wctx.pctx, outer, inner, cols), l
		case c.Window.PartKeyLen == 0:
			agg := c.Plan
			if c.Locus.IsSingle() && !locus.IsSingle() {
				agg = core.PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_Broadcast}.Init(wctx.pctx, agg)
			}
			cur = core.PhysicalNestLoop{SingletonOuter: true}.Init(wctx.pctx, agg, cur, cols)
		default:
			partner := c.Window.WindowCoplan
			keys := make([]core.JoinKey, 0, len(c.PartKeyAttrs))
			outerAttrs := make([]int, 0, len(c.PartKeyAttrs))
			for j, a := range c.PartKeyAttrs {
				if c.Window.PartKeyEqOps[j] == "" {
					return nil, property.Locus{}, plannererrors.ErrInternal.GenWithStackByArgs(errMsgNoMergeJoinOp)
				}
				tp := c.TargetList[a-1].Expr.GetType()
				keys = append(keys, core.JoinKey{
					Outer: expression.NewVar(partner.VarNo, partner.PartKeyAttrs[j], tp),
					Inner: expression.NewVar(c.VarNo, a, tp),
					Op:    types.OpNullEQ,
				})
				outerAttrs = append(outerAttrs, offsets[partner.VarNo]+partner.PartKeyAttrs[j])
			}
			outer, inner, l := wctx.collocateJoin(cur, locus, outerAttrs, c.Plan, c.Locus, c.PartKeyAttrs, width)
			cur, locus = core.PhysicalHashJoin{Keys: keys}.Init(wctx.pctx, outer, inner, cols), l
		}
		tlist = cols
	}
	wctx.coplanOffsets = offsets
	return cur, locus, nil
}

// coplanColumns forwards the columns of a coplan into a joined relation
// after offset columns.
func coplanColumns(c *Coplan, offset int) []*expression.TargetEntry {
	res := make([]*expression.TargetEntry, 0, len(c.TargetList))
	for _, te := range c.TargetList {
		res = append(res, &expression.TargetEntry{
			Expr:    expression.NewVar(c.VarNo, te.ResNo, te.Expr.GetType()),
			ResNo:   offset + te.ResNo,
			ResName: te.ResName,
		})
	}
	return res
}

// collocateJoin moves the inputs of an equi-join so that matching rows meet
// in one process. outerKeys are columns of outer, innerKeys columns of inner
// which lands after innerOffset columns in the join output. It returns the
// inputs and the locus of the join output.
func (wctx *WindowContext) collocateJoin(
	outer core.PhysicalPlan, outerLocus property.Locus, outerKeys []int,
	inner core.PhysicalPlan, innerLocus property.Locus, innerKeys []int,
	innerOffset int,
) (core.PhysicalPlan, core.PhysicalPlan, property.Locus) {
	switch {
	case outerLocus.IsSingle():
		if innerLocus.IsPartitioned() {
			inner = core.PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_PassThrough}.Init(wctx.pctx, inner)
		}
		return outer, inner, outerLocus
	case outerLocus.Type == property.LocusReplicated:
		if innerLocus.Type != property.LocusHashed {
			return outer, inner, innerLocus.Clone()
		}
		shifted := make([]int, 0, len(innerLocus.HashAttrs))
		for _, a := range innerLocus.HashAttrs {
			shifted = append(shifted, innerOffset+a)
		}
		return outer, inner, property.NewHashedLocus(innerLocus.NumSegments, shifted...)
	case innerLocus.Type == property.LocusReplicated:
		return outer, inner, outerLocus
	}

	oi, outerOK := hashKeyIndexes(outerLocus, outerKeys)
	ii, innerOK := hashKeyIndexes(innerLocus, innerKeys)
	switch {
	case outerOK && innerOK && slices.Equal(oi, ii):
	case outerOK:
		inner = wctx.redistribute(inner, pick(innerKeys, oi))
	case innerOK:
		outer = wctx.redistribute(outer, pick(outerKeys, ii))
		outerLocus = property.NewHashedLocus(wctx.pctx.NumSegments, pick(outerKeys, ii)...)
	default:
		inner = wctx.redistribute(inner, innerKeys)
		outer = wctx.redistribute(outer, outerKeys)
		outerLocus = property.NewHashedLocus(wctx.pctx.NumSegments, outerKeys...)
	}
	return outer, inner, outerLocus
}

func (wctx *WindowContext) redistribute(plan core.PhysicalPlan, cols []int) core.PhysicalPlan {
	return core.PhysicalExchangeSender{
		ExchangeType: tipb.ExchangeType_Hash,
		HashCols:     slices.Clone(cols),
	}.Init(wctx.pctx, plan)
}

// hashKeyIndexes returns the positions in keys of the hash columns of locus.
func hashKeyIndexes(locus property.Locus, keys []int) ([]int, bool) {
	if locus.Type != property.LocusHashed || len(locus.HashAttrs) == 0 {
		return nil, false
	}
	idx := make([]int, 0, len(locus.HashAttrs))
	for _, a := range locus.HashAttrs {
		i := slices.Index(keys, a)
		if i < 0 {
			return nil, false
		}
		idx = append(idx, i)
	}
	return idx, true
}

func pick(keys []int, idx []int) []int {
	res := make([]int, 0, len(idx))
	for _, i := range idx {
		res = append(res, keys[i])
	}
	return res
}
