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
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/config"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/intset"
	"go.uber.org/zap"
)

// RefClass tells how a window call is computed.
type RefClass byte

const (
	// AggregateUnordered is an aggregate over a window without ORDER BY. Its
	// value is the same for the whole partition and is computed by an
	// ordinary aggregation joined back on the partition key.
	AggregateUnordered RefClass = iota
	// AggregateOrdered is an aggregate over an ordered window.
	AggregateOrdered
	// WindowDeferred is a window function that needs the partition row count
	// to produce its final value.
	WindowDeferred
	// WindowImmediate is any other window function.
	WindowImmediate
)

var refClassNames = []string{"aggregate_unordered", "aggregate_ordered", "window_deferred", "window_immediate"}

// String implements fmt.Stringer interface.
func (c RefClass) String() string {
	if int(c) < len(refClassNames) {
		return refClassNames[c]
	}
	return "unknown"
}

// RefInfo describes one window call of the target list.
type RefInfo struct {
	Index int
	// Ref is the call as written in the query.
	Ref  *expression.WindowFunc
	Desc *expression.FuncDesc
	Kind expression.WindowCallKind
	// VarSet holds the dense var indexes the call's arguments use.
	VarSet    intset.FastIntSet
	SpecIndex int
	Class     RefClass
	// ResultExpr computes the value of the call over the final plan.
	ResultExpr expression.Expression
	// ResNo is the output column of the call in sequential plans.
	ResNo      int
	TransSpace int64

	// synthesized frame of LEAD/LAG calls
	leadLagFrame *query.Frame
}

func (r *RefInfo) needPartKey() bool {
	return r.Class == AggregateUnordered || r.Class == WindowDeferred
}

func (r *RefInfo) needAuxCount() bool {
	return r.Class == WindowDeferred
}

func (r *RefInfo) deferred() *expression.DeferredFinalize {
	if rf, ok := r.Kind.(*expression.RankingFunction); ok {
		return rf.Deferred
	}
	return nil
}

// SpecInfo is a distinct window specification.
type SpecInfo struct {
	SpecIndex int
	// PartSet holds the sort/group refs of the partition clauses.
	PartSet intset.FastIntSet
	PartKey []*expression.SortGroupClause
	Order   []*expression.SortGroupClause
	// UniqueOrder is Order without partition keys and repeated keys.
	UniqueOrder []*expression.SortGroupClause
	Frame       query.Frame
	// RefSet holds the indexes of the calls over this specification.
	RefSet      intset.FastIntSet
	WindowIndex int
}

// WindowLevel is the part of a window evaluated for one SpecInfo.
type WindowLevel struct {
	SpecIndex int
	Order     []*expression.SortGroupClause
	Frame     query.Frame
}

// WindowInfo is a group of SpecInfos computed by one window operator.
type WindowInfo struct {
	Index          int
	FirstSpecIndex int
	NumSpecIndex   int
	PartSet        intset.FastIntSet
	// PartClauses are the partition clauses in PartSet order.
	PartClauses []*expression.SortGroupClause
	// SortClause is PartClauses followed by the longest member order.
	SortClause   []*expression.SortGroupClause
	PartKeyLen   int
	PartKeyAttrs []int
	PartKeyEqOps []string
	// SortKeys is SortClause resolved to columns of the window input.
	SortKeys     property.PathKeys
	Levels       []*WindowLevel
	NeedPartKey  bool
	NeedAuxCount bool

	WindowCoplan *Coplan
	AggCoplan    *Coplan
}

// CoplanType tells what a coplan computes.
type CoplanType byte

// Coplan types.
const (
	CoplanWindow CoplanType = iota
	CoplanAgg
)

// String implements fmt.Stringer interface.
func (t CoplanType) String() string {
	if t == CoplanAgg {
		return "agg"
	}
	return "window"
}

// Coplan is one of the independently computed relations that a parallel
// window plan joins together.
type Coplan struct {
	Type   CoplanType
	VarNo  int
	Window *WindowInfo
	// TargetList is over the coplan input.
	TargetList  []*expression.TargetEntry
	TargetNames []string
	// RowKeyAttrs and PartKeyAttrs are output columns of the coplan.
	RowKeyAttrs  []int
	PartKeyAttrs []int
	NumAggs      int
	TransSpace   int64
	Plan         core.PhysicalPlan
	Locus        property.Locus
	// AuxCountAttr is the output column of the partition row count.
	AuxCountAttr int
	// refAttrs maps a ref index to its output column.
	refAttrs map[int]int
}

// WindowContext is the planning state of one query.
type WindowContext struct {
	Query      *query.Query
	OrigTList  []*expression.TargetEntry
	UpperTList []*expression.TargetEntry
	VarIndex   *VarIndex

	RefInfos    []*RefInfo
	SpecInfos   []*SpecInfo
	WindowInfos []*WindowInfo
	// placeholders maps the window calls of UpperTList to their refs.
	placeholders map[*expression.WindowFunc]int

	HasUnorderedAggs     bool
	HasDeferredWindowFns bool

	LowerTList      []*expression.TargetEntry
	KeyedLowerTList []*expression.TargetEntry
	SortRefResNo    map[int]int
	// UpperVarAttrNos maps a dense var index to its column in the relation
	// UpperVarNo of the final plan.
	UpperVarAttrNos []int
	UpperVarNo      int
	RowKeyAttrs     []int

	SubPlan         core.PhysicalPlan
	SubPlanLocus    property.Locus
	SubPlanPathKeys property.PathKeys

	Coplans []*Coplan
	// coplanOffsets maps a coplan varno to the offset of its columns in the
	// joined relation of a parallel plan.
	coplanOffsets map[int]int

	cfg        config.Window
	catalog    expression.FunctionCatalog
	subplanner SubqueryPlanner
	pctx       *core.PlanContext
	logger     *zap.Logger
}

func (wctx *WindowContext) refsOfWindow(w *WindowInfo) []*RefInfo {
	var refs []*RefInfo
	for _, r := range wctx.RefInfos {
		if wctx.SpecInfos[r.SpecIndex].WindowIndex == w.Index {
			refs = append(refs, r)
		}
	}
	return refs
}

func (wctx *WindowContext) levelOf(w *WindowInfo, r *RefInfo) int {
	return r.SpecIndex - w.FirstSpecIndex
}

// pathKeys resolves sort clauses to columns of the keyed lower target list.
func (wctx *WindowContext) pathKeys(clauses []*expression.SortGroupClause) (property.PathKeys, error) {
	keys := make(property.PathKeys, 0, len(clauses))
	for _, sc := range clauses {
		resNo, ok := wctx.SortRefResNo[sc.TLESortGroupRef]
		if !ok {
			return nil, plannererrors.ErrInternal.GenWithStackByArgs("sort clause does not reference the window input")
		}
		keys = append(keys, property.SortItem{ResNo: resNo, SortOp: sc.SortOp, NullsFirst: sc.NullsFirst})
	}
	return keys, nil
}

// lowerExpr rewrites the vars of e to columns of the keyed lower target list.
func (wctx *WindowContext) lowerExpr(e expression.Expression) (expression.Expression, error) {
	return expression.Mutate(e, func(n expression.Expression) (expression.Expression, bool, error) {
		v, ok := n.(*expression.Var)
		if !ok || v.LevelsUp > 0 {
			return nil, false, nil
		}
		te := expression.TargetListMember(wctx.KeyedLowerTList, v)
		if te == nil {
			return nil, false, plannererrors.ErrInternal.GenWithStackByArgs("var " + v.String() + " is not in the window input")
		}
		return expression.NewVar(1, te.ResNo, v.RetType), true, nil
	})
}

// lowerWindowFunc returns the call evaluated by a window operator at the
// given level.
func (wctx *WindowContext) lowerWindowFunc(r *RefInfo, level int, stage expression.WinStage) (*expression.WindowFunc, error) {
	wf := r.Ref.Clone().(*expression.WindowFunc)
	for i, arg := range wf.Args {
		l, err := wctx.lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		wf.Args[i] = l
	}
	if wf.Filter != nil {
		l, err := wctx.lowerExpr(wf.Filter)
		if err != nil {
			return nil, err
		}
		wf.Filter = l
	}
	wf.WinRef = level
	wf.Stage = stage
	if stage == expression.WinStagePreliminary {
		wf.RetType = r.deferred().PrelimType
	}
	return wf, nil
}

// windowLevels resolves the levels of w for a window operator.
func (wctx *WindowContext) windowLevels(w *WindowInfo) ([]core.WindowLevel, error) {
	levels := make([]core.WindowLevel, 0, len(w.Levels))
	for _, lvl := range w.Levels {
		keys, err := wctx.pathKeys(lvl.Order)
		if err != nil {
			return nil, err
		}
		frame, err := wctx.lowerFrame(lvl.Frame)
		if err != nil {
			return nil, err
		}
		levels = append(levels, core.WindowLevel{OrderBy: keys, Frame: frame})
	}
	return levels, nil
}

// lowerFrame rewrites the bound expressions of f over the keyed lower
// target list.
func (wctx *WindowContext) lowerFrame(f query.Frame) (query.Frame, error) {
	res := f.Clone()
	for _, off := range []*expression.Expression{&res.StartOffset, &res.EndOffset} {
		if *off == nil {
			continue
		}
		l, err := wctx.lowerExpr(*off)
		if err != nil {
			return query.Frame{}, err
		}
		*off = l
	}
	return res, nil
}
