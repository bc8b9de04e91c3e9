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
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
)

// createCoplans allocates the coplans of every window. Varnos follow
// creation order.
func createCoplans(wctx *WindowContext) {
	wctx.Coplans = wctx.Coplans[:0]
	for _, w := range wctx.WindowInfos {
		w.WindowCoplan = &Coplan{
			Type:     CoplanWindow,
			VarNo:    len(wctx.Coplans) + 1,
			Window:   w,
			refAttrs: make(map[int]int),
		}
		wctx.Coplans = append(wctx.Coplans, w.WindowCoplan)
		if w.NeedPartKey || w.NeedAuxCount {
			w.AggCoplan = &Coplan{
				Type:     CoplanAgg,
				VarNo:    len(wctx.Coplans) + 1,
				Window:   w,
				refAttrs: make(map[int]int),
			}
			wctx.Coplans = append(wctx.Coplans, w.AggCoplan)
		}
	}
}

func (c *Coplan) addTarget(expr expression.Expression, name string) int {
	resNo := len(c.TargetList) + 1
	c.TargetList = append(c.TargetList, &expression.TargetEntry{Expr: expr, ResNo: resNo, ResName: name})
	c.TargetNames = append(c.TargetNames, name)
	return resNo
}

func (c *Coplan) forwardColumn(in core.PhysicalPlan, attr int) int {
	te := in.TargetList()[attr-1]
	return c.addTarget(expression.NewVar(1, attr, te.Expr.GetType()), te.ResName)
}

// finalizeWindowCoplan evaluates the window calls of c over in. The first
// window coplan forwards every input column, the others only the keys they
// are joined on.
func (wctx *WindowContext) finalizeWindowCoplan(c *Coplan, in core.PhysicalPlan, locus property.Locus) error {
	w := c.Window
	if c.VarNo == 1 {
		for _, te := range core.PassThroughTargetList(in) {
			c.addTarget(te.Expr, te.ResName)
		}
		c.RowKeyAttrs = append([]int(nil), wctx.RowKeyAttrs...)
		c.PartKeyAttrs = append([]int(nil), w.PartKeyAttrs...)
	} else {
		for _, a := range wctx.RowKeyAttrs {
			c.RowKeyAttrs = append(c.RowKeyAttrs, c.forwardColumn(in, a))
		}
		if w.AggCoplan != nil {
			for _, a := range w.PartKeyAttrs {
				c.PartKeyAttrs = append(c.PartKeyAttrs, c.forwardColumn(in, a))
			}
		}
	}

	hasFunc := false
	for _, r := range wctx.refsOfWindow(w) {
		stage := expression.WinStageImmediate
		switch r.Class {
		case AggregateUnordered:
			continue
		case WindowDeferred:
			stage = expression.WinStagePreliminary
		}
		wf, err := wctx.lowerWindowFunc(r, wctx.levelOf(w, r), stage)
		if err != nil {
			return err
		}
		c.refAttrs[r.Index] = c.addTarget(wf, r.Ref.FuncName)
		hasFunc = true
	}

	var node core.PhysicalPlan
	if hasFunc {
		levels, err := wctx.windowLevels(w)
		if err != nil {
			return err
		}
		node = core.PhysicalWindow{PartitionBy: w.PartKeyAttrs, Levels: levels}.Init(wctx.pctx, in, c.TargetList)
	} else {
		node = core.PhysicalProjection{}.Init(wctx.pctx, in, c.TargetList)
	}
	c.Plan = core.PhysicalSubqueryScan{Alias: coplanAlias, VarNo: c.VarNo}.Init(wctx.pctx, node)
	c.Locus = mapLocus(locus, c.TargetList)
	return nil
}

// finalizeAggCoplan computes the unordered aggregates and the partition row
// count of c's window grouped on the partition key.
func (wctx *WindowContext) finalizeAggCoplan(c *Coplan, in core.PhysicalPlan, locus property.Locus) error {
	w := c.Window
	for _, a := range w.PartKeyAttrs {
		c.PartKeyAttrs = append(c.PartKeyAttrs, c.forwardColumn(in, a))
	}
	for _, r := range wctx.refsOfWindow(w) {
		if r.Class != AggregateUnordered {
			continue
		}
		wf, err := wctx.lowerWindowFunc(r, 0, expression.WinStageImmediate)
		if err != nil {
			return err
		}
		c.refAttrs[r.Index] = c.addTarget(expression.AggrefFromWindowFunc(wf), r.Ref.FuncName)
		c.NumAggs++
		c.TransSpace += r.TransSpace
	}
	if w.NeedAuxCount {
		c.AuxCountAttr = c.addTarget(expression.NewCountStar(), partitionCountName)
		c.NumAggs++
		c.TransSpace += wctx.countTransSpace()
	}
	agg := core.PhysicalAgg{GroupBy: w.PartKeyAttrs, TransSpace: c.TransSpace}.Init(wctx.pctx, in, c.TargetList)
	c.Plan = core.PhysicalSubqueryScan{Alias: coplanAlias, VarNo: c.VarNo}.Init(wctx.pctx, agg)
	c.Locus = mapLocus(locus, c.TargetList)
	return nil
}

// setCoplanResults points every window call at the coplan column that
// computes it.
func setCoplanResults(wctx *WindowContext) {
	for _, r := range wctx.RefInfos {
		w := wctx.WindowInfos[wctx.SpecInfos[r.SpecIndex].WindowIndex]
		win, agg := w.WindowCoplan, w.AggCoplan
		switch r.Class {
		case AggregateUnordered:
			r.ResultExpr = expression.NewVar(agg.VarNo, agg.refAttrs[r.Index], r.Ref.RetType)
		case WindowDeferred:
			d := r.deferred()
			r.ResultExpr = expression.NewFuncExpr(d.FinalFunc, r.Ref.RetType,
				expression.NewVar(win.VarNo, win.refAttrs[r.Index], d.PrelimType),
				expression.NewVar(agg.VarNo, agg.AuxCountAttr, types.TypeInt8))
		default:
			r.ResultExpr = expression.NewVar(win.VarNo, win.refAttrs[r.Index], r.Ref.RetType)
		}
	}
}

// mapLocus expresses the locus of an input in the columns of a target list
// computed over it.
func mapLocus(locus property.Locus, tlist []*expression.TargetEntry) property.Locus {
	if locus.Type != property.LocusHashed {
		return locus.Clone()
	}
	attrs := make([]int, 0, len(locus.HashAttrs))
	for _, a := range locus.HashAttrs {
		te := findForwardedColumn(tlist, a)
		if te == nil {
			return property.Locus{Type: property.LocusStrewn, NumSegments: locus.NumSegments}
		}
		attrs = append(attrs, te.ResNo)
	}
	return property.NewHashedLocus(locus.NumSegments, attrs...)
}

func findForwardedColumn(tlist []*expression.TargetEntry, attr int) *expression.TargetEntry {
	for _, te := range tlist {
		if v, ok := te.Expr.(*expression.Var); ok && v.VarNo == 1 && v.AttNo == attr && v.LevelsUp == 0 {
			return te
		}
	}
	return nil
}
