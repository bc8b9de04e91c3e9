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
)

// buildTrivialPlan puts a single window operator on the common subquery.
func buildTrivialPlan(ctx context.Context, wctx *WindowContext) (core.PhysicalPlan, property.Locus, property.PathKeys, error) {
	w := wctx.WindowInfos[0]
	plan, locus, pathKeys, err := wctx.planSubquery(ctx, wctx.KeyedLowerTList, w.SortClause)
	if err != nil {
		return nil, property.Locus{}, nil, err
	}
	wctx.SubPlan, wctx.SubPlanLocus, wctx.SubPlanPathKeys = plan, locus, pathKeys
	plan, locus, pathKeys = AssureCollocationAndOrder(wctx.pctx, plan, w.PartKeyAttrs, w.SortKeys, locus, pathKeys)

	tlist := core.PassThroughTargetList(plan)
	for _, r := range wctx.refsOfWindow(w) {
		wf, err := wctx.lowerWindowFunc(r, wctx.levelOf(w, r), expression.WinStageImmediate)
		if err != nil {
			return nil, property.Locus{}, nil, err
		}
		r.ResNo = len(tlist) + 1
		tlist = append(tlist, &expression.TargetEntry{Expr: wf, ResNo: r.ResNo, ResName: r.Ref.FuncName})
		r.ResultExpr = expression.NewVar(1, r.ResNo, r.Ref.RetType)
	}
	levels, err := wctx.windowLevels(w)
	if err != nil {
		return nil, property.Locus{}, nil, err
	}
	win := core.PhysicalWindow{PartitionBy: w.PartKeyAttrs, Levels: levels}.Init(wctx.pctx, plan, tlist)
	wctx.UpperVarNo = 1
	return win, locus, pathKeys, nil
}
