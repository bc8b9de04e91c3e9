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
	"context"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"go.uber.org/zap"
)

const (
	segmentJoinKeyName = "segment_join_key"
	rowJoinKeyName     = "row_join_key"
	segmentIDFunc      = "mpp_execution_segment"
)

// coplanInput is the collocated and sorted input of the coplans of a window.
type coplanInput struct {
	win      core.PhysicalPlan
	agg      core.PhysicalPlan
	locus    property.Locus
	aggLocus property.Locus
}

// buildParallelPlan evaluates every window over its own consumer of the
// common subquery and joins the coplans back together.
func buildParallelPlan(ctx context.Context, wctx *WindowContext) (core.PhysicalPlan, property.Locus, property.PathKeys, error) {
	plan, locus, pathKeys, err := wctx.planSubquery(ctx, wctx.KeyedLowerTList, nil)
	if err != nil {
		return nil, property.Locus{}, nil, err
	}
	wctx.SubPlan, wctx.SubPlanLocus, wctx.SubPlanPathKeys = plan, locus, pathKeys
	if len(wctx.WindowInfos) > 1 {
		plan = wctx.addRowKeys(plan)
	}

	createCoplans(wctx)
	inputs, err := wctx.constructSharePlans(ctx, plan, locus, pathKeys)
	if err != nil {
		return nil, property.Locus{}, nil, err
	}
	for i, w := range wctx.WindowInfos {
		in := inputs[i]
		if err := wctx.finalizeWindowCoplan(w.WindowCoplan, in.win, in.locus); err != nil {
			return nil, property.Locus{}, nil, err
		}
		if w.AggCoplan != nil {
			if err := wctx.finalizeAggCoplan(w.AggCoplan, in.agg, in.aggLocus); err != nil {
				return nil, property.Locus{}, nil, err
			}
		}
	}
	setCoplanResults(wctx)
	wctx.UpperVarNo = 1

	joined, joinedLocus, err := wctx.assembleJoinTree()
	if err != nil {
		return nil, property.Locus{}, nil, err
	}
	return joined, joinedLocus, nil, nil
}

// addRowKeys stamps every row with the id of its segment and its row number
// on that segment.
func (wctx *WindowContext) addRowKeys(plan core.PhysicalPlan) core.PhysicalPlan {
	tlist := core.PassThroughTargetList(plan)
	seg := &expression.TargetEntry{
		Expr:    expression.NewFuncExpr(segmentIDFunc, types.TypeInt4),
		ResNo:   len(tlist) + 1,
		ResName: segmentJoinKeyName,
		ResJunk: true,
	}
	tlist = append(tlist, seg)
	row := &expression.TargetEntry{
		Expr: &expression.WindowFunc{
			FuncName: "row_number",
			RetType:  types.TypeInt8,
			Stage:    expression.WinStageRowKey,
		},
		ResNo:   len(tlist) + 1,
		ResName: rowJoinKeyName,
		ResJunk: true,
	}
	tlist = append(tlist, row)
	wctx.RowKeyAttrs = []int{seg.ResNo, row.ResNo}
	return core.PhysicalWindow{Levels: []core.WindowLevel{{}}}.Init(wctx.pctx, plan, tlist)
}

// constructSharePlans gives every window a consumer of the row-keyed input,
// collocated and sorted for the window. The row keys are stamped once so
// that every window coplan sees the same key for a row. A window that also
// needs an aggregate coplan splits its input in two, or plans a second copy
// of the common subquery when input sharing is off.
func (wctx *WindowContext) constructSharePlans(
	ctx context.Context,
	plan core.PhysicalPlan,
	locus property.Locus,
	pathKeys property.PathKeys,
) ([]coplanInput, error) {
	share := wctx.shareInput()
	copies := core.Share(wctx.pctx, plan, len(wctx.WindowInfos))
	inputs := make([]coplanInput, 0, len(copies))
	for i, w := range wctx.WindowInfos {
		p, l, _ := AssureCollocationAndOrder(wctx.pctx, copies[i], w.PartKeyAttrs, w.SortKeys, locus, pathKeys)
		in := coplanInput{win: p, locus: l, aggLocus: l}
		if w.AggCoplan != nil {
			if share {
				shares := core.Share(wctx.pctx, p, 2)
				in.win, in.agg = shares[0], shares[1]
			} else {
				ap, al, ak, err := wctx.planSubquery(ctx, wctx.KeyedLowerTList, nil)
				if err != nil {
					return nil, err
				}
				in.agg, in.aggLocus, _ = AssureCollocationAndOrder(wctx.pctx, ap, w.PartKeyAttrs, w.SortKeys, al, ak)
			}
		}
		wctx.logger.Debug("parallel window input",
			zap.Int("window", w.Index),
			zap.Stringer("locus", l),
			zap.Bool("aggregate", w.AggCoplan != nil),
			zap.Bool("shared", share))
		inputs = append(inputs, in)
	}
	return inputs, nil
}
