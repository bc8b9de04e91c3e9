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
	"slices"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"go.uber.org/zap"
)

const (
	coplanAlias         = "coplan"
	partitionCountName  = "partition_count"
	unorderedDummyName  = "dummy"
	errMsgNoMergeJoinOp = "failed to find mergejoinable operator family for partition key"
)

// windowStages splits the WindowInfos into runs with equal partition sets.
// Inside a run the windows are ordered by the length of their sort clause.
func windowStages(windows []*WindowInfo) [][]*WindowInfo {
	var stages [][]*WindowInfo
	for i, w := range windows {
		if i > 0 && w.PartSet.Equals(windows[i-1].PartSet) {
			stages[len(stages)-1] = append(stages[len(stages)-1], w)
			continue
		}
		stages = append(stages, []*WindowInfo{w})
	}
	for _, stage := range stages {
		slices.SortStableFunc(stage, func(a, b *WindowInfo) int {
			return len(a.SortClause) - len(b.SortClause)
		})
	}
	return stages
}

// lookAheadKeys returns the longest sort keys of the windows following i
// that extend the keys of window i one after another.
func lookAheadKeys(windows []*WindowInfo, i int) property.PathKeys {
	keys := windows[i].SortKeys
	for j := i + 1; j < len(windows); j++ {
		if !windows[j].SortKeys.Contains(keys) {
			break
		}
		keys = windows[j].SortKeys
	}
	return keys
}

type stageState struct {
	plan     core.PhysicalPlan
	locus    property.Locus
	pathKeys property.PathKeys
}

// buildSequentialPlan evaluates the windows one stage after the other over a
// single copy of the input. Partitioned stages come first.
func buildSequentialPlan(ctx context.Context, wctx *WindowContext) (core.PhysicalPlan, property.Locus, property.PathKeys, error) {
	hint := wctx.WindowInfos[len(wctx.WindowInfos)-1].SortClause
	plan, locus, pathKeys, err := wctx.planSubquery(ctx, wctx.KeyedLowerTList, hint)
	if err != nil {
		return nil, property.Locus{}, nil, err
	}
	wctx.SubPlan, wctx.SubPlanLocus, wctx.SubPlanPathKeys = plan, locus, pathKeys

	st := &stageState{plan: plan, locus: locus, pathKeys: pathKeys}
	stages := windowStages(wctx.WindowInfos)
	for i := len(stages) - 1; i >= 0; i-- {
		if err := wctx.buildStage(st, stages[i]); err != nil {
			return nil, property.Locus{}, nil, err
		}
	}
	for _, r := range wctx.RefInfos {
		r.ResultExpr = expression.NewVar(1, r.ResNo, r.Ref.RetType)
	}
	wctx.UpperVarNo = 1
	return st.plan, st.locus, st.pathKeys, nil
}

func (wctx *WindowContext) buildStage(st *stageState, stage []*WindowInfo) error {
	first := stage[0]
	st.plan, st.locus, st.pathKeys = AssureCollocationAndOrder(
		wctx.pctx, st.plan, first.PartKeyAttrs, lookAheadKeys(stage, 0), st.locus, st.pathKeys)

	needAgg, needCount := false, false
	for _, w := range stage {
		needAgg = needAgg || w.NeedPartKey
		needCount = needCount || w.NeedAuxCount
	}
	wctx.logger.Debug("sequential window stage",
		zap.Int("windows", len(stage)),
		zap.Ints("partKey", first.PartKeyAttrs),
		zap.Bool("aggregate", needAgg))

	winIn, aggIn := st.plan, core.PhysicalPlan(nil)
	if needAgg {
		shares := core.Share(wctx.pctx, st.plan, 2)
		winIn, aggIn = shares[0], shares[1]
	}

	cur, pathKeys := winIn, st.pathKeys
	var stageRefs []*RefInfo
	for i, w := range stage {
		cur, pathKeys = AssureOrder(wctx.pctx, cur, lookAheadKeys(stage, i), pathKeys)
		refs := wctx.refsOfWindow(w)
		tlist := core.PassThroughTargetList(cur)
		hasFunc := false
		for _, r := range refs {
			var expr expression.Expression
			name := r.Ref.FuncName
			switch r.Class {
			case AggregateUnordered:
				expr, name = expression.NewNullConst(r.Ref.RetType), unorderedDummyName
			case WindowDeferred:
				wf, err := wctx.lowerWindowFunc(r, wctx.levelOf(w, r), expression.WinStagePreliminary)
				if err != nil {
					return err
				}
				expr, hasFunc = wf, true
			default:
				wf, err := wctx.lowerWindowFunc(r, wctx.levelOf(w, r), expression.WinStageImmediate)
				if err != nil {
					return err
				}
				expr, hasFunc = wf, true
			}
			r.ResNo = len(tlist) + 1
			tlist = append(tlist, &expression.TargetEntry{Expr: expr, ResNo: r.ResNo, ResName: name})
		}
		stageRefs = append(stageRefs, refs...)
		if !hasFunc {
			cur = core.PhysicalProjection{}.Init(wctx.pctx, cur, tlist)
			continue
		}
		levels, err := wctx.windowLevels(w)
		if err != nil {
			return err
		}
		cur = core.PhysicalWindow{PartitionBy: w.PartKeyAttrs, Levels: levels}.Init(wctx.pctx, cur, tlist)
	}

	if !needAgg {
		st.plan = core.PhysicalSubqueryScan{Alias: coplanAlias, VarNo: 1}.Init(wctx.pctx, cur)
		st.pathKeys = pathKeys
		return nil
	}
	joined, err := wctx.joinStageAggregates(cur, aggIn, first, stageRefs, needCount)
	if err != nil {
		return err
	}
	st.plan = core.PhysicalSubqueryScan{Alias: coplanAlias, VarNo: 1}.Init(wctx.pctx, joined)
	if first.PartKeyLen > 0 {
		// the merge join keeps only the partition key order of its outer side
		st.pathKeys = pathKeys[:min(first.PartKeyLen, len(pathKeys))].Clone()
	} else {
		st.pathKeys = pathKeys
	}
	return nil
}

// joinStageAggregates computes the unordered aggregates and partition counts
// of a stage over aggIn and joins them to the window chain win.
func (wctx *WindowContext) joinStageAggregates(
	win, aggIn core.PhysicalPlan,
	w *WindowInfo,
	refs []*RefInfo,
	needCount bool,
) (core.PhysicalPlan, error) {
	aggTList := make([]*expression.TargetEntry, 0, len(w.PartKeyAttrs)+len(refs)+1)
	for _, a := range w.PartKeyAttrs {
		te := aggIn.TargetList()[a-1]
		aggTList = append(aggTList, &expression.TargetEntry{
			Expr:    expression.NewVar(1, a, te.Expr.GetType()),
			ResNo:   len(aggTList) + 1,
			ResName: te.ResName,
		})
	}
	aggAttr := make(map[int]int)
	var transSpace int64
	for _, r := range refs {
		if r.Class != AggregateUnordered {
			continue
		}
		wf, err := wctx.lowerWindowFunc(r, 0, expression.WinStageImmediate)
		if err != nil {
			return nil, err
		}
		aggAttr[r.Index] = len(aggTList) + 1
		aggTList = append(aggTList, &expression.TargetEntry{
			Expr:    expression.AggrefFromWindowFunc(wf),
			ResNo:   len(aggTList) + 1,
			ResName: r.Ref.FuncName,
		})
		transSpace += r.TransSpace
	}
	countAttr := 0
	if needCount {
		countAttr = len(aggTList) + 1
		aggTList = append(aggTList, &expression.TargetEntry{
			Expr:    expression.NewCountStar(),
			ResNo:   countAttr,
			ResName: partitionCountName,
		})
		transSpace += wctx.countTransSpace()
	}
	agg := core.PhysicalAgg{GroupBy: w.PartKeyAttrs, TransSpace: transSpace}.Init(wctx.pctx, aggIn, aggTList)
	aggScan := core.PhysicalSubqueryScan{Alias: coplanAlias, VarNo: 2}.Init(wctx.pctx, agg)
	winScan := core.PhysicalSubqueryScan{Alias: coplanAlias, VarNo: 1}.Init(wctx.pctx, win)

	byResNo := make(map[int]*RefInfo, len(refs))
	for _, r := range refs {
		byResNo[r.ResNo] = r
	}
	tlist := core.PassThroughColumns(winScan, 1)
	for _, te := range tlist {
		r, ok := byResNo[te.ResNo]
		if !ok {
			continue
		}
		switch r.Class {
		case AggregateUnordered:
			te.Expr = expression.NewVar(2, aggAttr[r.Index], r.Ref.RetType)
			te.ResName = r.Ref.FuncName
		case WindowDeferred:
			te.Expr = expression.NewFuncExpr(r.deferred().FinalFunc, r.Ref.RetType,
				expression.NewVar(1, r.ResNo, r.deferred().PrelimType),
				expression.NewVar(2, countAttr, types.TypeInt8))
		}
	}

	if w.PartKeyLen == 0 {
		return core.PhysicalNestLoop{SingletonOuter: true}.Init(wctx.pctx, aggScan, winScan, tlist), nil
	}
	keys := make([]core.JoinKey, 0, w.PartKeyLen)
	for i, a := range w.PartKeyAttrs {
		if w.PartKeyEqOps[i] == "" {
			return nil, plannererrors.ErrInternal.GenWithStackByArgs(errMsgNoMergeJoinOp)
		}
		tp := aggTList[i].Expr.GetType()
		keys = append(keys, core.JoinKey{
			Outer: expression.NewVar(2, i+1, tp),
			Inner: expression.NewVar(1, a, tp),
			Op:    w.PartKeyEqOps[i],
		})
	}
	return core.PhysicalMergeJoin{Keys: keys, UniqueOuter: true}.Init(wctx.pctx, aggScan, winScan, tlist), nil
}

func (wctx *WindowContext) countTransSpace() int64 {
	if desc, ok := wctx.catalog.LookupFunction("count"); ok {
		if agg, ok := desc.Kind.(*expression.OrdinaryAggregate); ok {
			return agg.TransSpace
		}
	}
	return 0
}
