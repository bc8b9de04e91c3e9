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

package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/pingcap/tipb/go-tipb"
)

var (
	_ PhysicalPlan = &PhysicalTableScan{}
	_ PhysicalPlan = &PhysicalProjection{}
	_ PhysicalPlan = &PhysicalSort{}
	_ PhysicalPlan = &PhysicalExchangeSender{}
	_ PhysicalPlan = &PhysicalWindow{}
	_ PhysicalPlan = &PhysicalAgg{}
	_ PhysicalPlan = &PhysicalShareInput{}
	_ PhysicalPlan = &PhysicalMergeJoin{}
	_ PhysicalPlan = &PhysicalNestLoop{}
	_ PhysicalPlan = &PhysicalHashJoin{}
	_ PhysicalPlan = &PhysicalSubqueryScan{}

	_ PhysicalJoin = &PhysicalMergeJoin{}
	_ PhysicalJoin = &PhysicalNestLoop{}
	_ PhysicalJoin = &PhysicalHashJoin{}
)

const defaultRowCount = 1000

// PhysicalTableScan reads every row of a table.
type PhysicalTableScan struct {
	basePhysicalPlan

	Table *query.RangeTblEntry
	VarNo int
}

// Init initializes PhysicalTableScan.
func (p PhysicalTableScan) Init(ctx *PlanContext) *PhysicalTableScan {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeTableScan)
	for i, col := range p.Table.Columns {
		p.tlist = append(p.tlist, &expression.TargetEntry{
			Expr:    expression.NewVar(p.VarNo, i+1, col.Type),
			ResNo:   i + 1,
			ResName: col.Name,
		})
	}
	p.rowCount = p.Table.RowCount
	if p.rowCount <= 0 {
		p.rowCount = defaultRowCount
	}
	p.cost = p.rowCount * ctx.CPUTupleCost
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalTableScan) ExplainInfo() string {
	return "table:" + p.Table.Name
}

// PhysicalProjection computes a new target list over its child.
type PhysicalProjection struct {
	basePhysicalPlan
}

// Init initializes PhysicalProjection.
func (p PhysicalProjection) Init(ctx *PlanContext, child PhysicalPlan, tlist []*expression.TargetEntry) *PhysicalProjection {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeProjection, child)
	p.tlist = tlist
	p.rowCount = child.StatsCount()
	p.cost = child.Cost() + p.rowCount*ctx.CPUTupleCost
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalProjection) ExplainInfo() string {
	return expression.TargetListString(p.tlist)
}

// PhysicalSort sorts its input.
type PhysicalSort struct {
	basePhysicalPlan

	ByItems property.PathKeys
}

// Init initializes PhysicalSort.
func (p PhysicalSort) Init(ctx *PlanContext, child PhysicalPlan) *PhysicalSort {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeSort, child)
	p.tlist = PassThroughTargetList(child)
	p.rowCount = child.StatsCount()
	p.cost = child.Cost() + p.rowCount*log2Rows(p.rowCount)*ctx.CPUTupleCost
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalSort) ExplainInfo() string {
	return explainPathKeys(p.ByItems)
}

func explainPathKeys(keys property.PathKeys) string {
	strs := make([]string, 0, len(keys))
	for _, k := range keys {
		strs = append(strs, k.String())
	}
	return strings.Join(strs, ", ")
}

// PhysicalExchangeSender moves rows between processes. Hash redistributes on
// HashCols, PassThrough gathers to a single process and Broadcast copies
// every row to all segments.
type PhysicalExchangeSender struct {
	basePhysicalPlan

	ExchangeType tipb.ExchangeType
	// HashCols are 1-based columns of the child.
	HashCols []int
	// MergeKeys makes a gather keep the order of its sorted input streams.
	MergeKeys property.PathKeys
}

// Init initializes PhysicalExchangeSender.
func (p PhysicalExchangeSender) Init(ctx *PlanContext, child PhysicalPlan) *PhysicalExchangeSender {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeExchangeSender, child)
	p.tlist = PassThroughTargetList(child)
	p.rowCount = child.StatsCount()
	moved := p.rowCount
	if p.ExchangeType == tipb.ExchangeType_Broadcast {
		moved *= float64(ctx.NumSegments)
	}
	p.cost = child.Cost() + moved*(ctx.CPUTupleCost+ctx.MotionCostPerRow)
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalExchangeSender) ExplainInfo() string {
	buffer := bytes.NewBufferString("ExchangeType: ")
	switch p.ExchangeType {
	case tipb.ExchangeType_PassThrough:
		buffer.WriteString("PassThrough")
	case tipb.ExchangeType_Broadcast:
		buffer.WriteString("Broadcast")
	case tipb.ExchangeType_Hash:
		buffer.WriteString("HashPartition")
	default:
		fmt.Fprintf(buffer, "UNKNOWN(%d)", p.ExchangeType)
	}
	if len(p.MergeKeys) > 0 {
		buffer.WriteString(", Merge Keys: [" + explainPathKeys(p.MergeKeys) + "]")
	}
	if len(p.HashCols) > 0 {
		buffer.WriteString(", Hash Cols: [")
		for i, c := range p.HashCols {
			if i > 0 {
				buffer.WriteString(", ")
			}
			fmt.Fprintf(buffer, "#%d", c)
		}
		buffer.WriteString("]")
	}
	return buffer.String()
}

// WindowLevel is one frame evaluated by a window operator, with the
// ordering its functions see inside a partition.
type WindowLevel struct {
	OrderBy property.PathKeys
	Frame   query.Frame
}

// PhysicalWindow evaluates window functions over its input, which must be
// collocated on PartitionBy and sorted by PartitionBy followed by the
// ordering of every level. A WindowFunc in the target list refers to a
// level by its WinRef.
type PhysicalWindow struct {
	basePhysicalPlan

	PartitionBy []int
	Levels      []WindowLevel
}

// Init initializes PhysicalWindow.
func (p PhysicalWindow) Init(ctx *PlanContext, child PhysicalPlan, tlist []*expression.TargetEntry) *PhysicalWindow {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeWindow, child)
	p.tlist = tlist
	p.rowCount = child.StatsCount()
	levels := max(len(p.Levels), 1)
	p.cost = child.Cost() + p.rowCount*float64(levels)*ctx.CPUTupleCost
	return &p
}

// LevelString formats the window of a level.
func (p *PhysicalWindow) LevelString(level int) string {
	var parts []string
	if len(p.PartitionBy) > 0 {
		strs := make([]string, 0, len(p.PartitionBy))
		for _, c := range p.PartitionBy {
			strs = append(strs, fmt.Sprintf("#%d", c))
		}
		parts = append(parts, "partition by "+strings.Join(strs, ", "))
	}
	if level >= 0 && level < len(p.Levels) {
		lvl := p.Levels[level]
		if len(lvl.OrderBy) > 0 {
			parts = append(parts, "order by "+explainPathKeys(lvl.OrderBy))
		}
		if !lvl.Frame.Options.IsDefault() {
			parts = append(parts, lvl.Frame.String())
		}
	}
	return strings.Join(parts, " ")
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalWindow) ExplainInfo() string {
	var strs []string
	for _, te := range p.tlist {
		wf, ok := te.Expr.(*expression.WindowFunc)
		if !ok {
			continue
		}
		name := wf.String()
		if i := strings.LastIndex(name, " over("); i >= 0 {
			name = name[:i]
		}
		strs = append(strs, fmt.Sprintf("%s->#%d over(%s)", name, te.ResNo, p.LevelString(wf.WinRef)))
	}
	return strings.Join(strs, ", ")
}

// PhysicalAgg computes ordinary aggregates. With GroupBy it streams over an
// input sorted on the group columns, otherwise it returns a single row.
type PhysicalAgg struct {
	basePhysicalPlan

	// GroupBy are 1-based columns of the child.
	GroupBy    []int
	TransSpace int64
}

// Init initializes PhysicalAgg.
func (p PhysicalAgg) Init(ctx *PlanContext, child PhysicalPlan, tlist []*expression.TargetEntry) *PhysicalAgg {
	tp := TypePlainAgg
	if len(p.GroupBy) > 0 {
		tp = TypeStreamAgg
	}
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, tp, child)
	p.tlist = tlist
	p.rowCount = 1
	if len(p.GroupBy) > 0 {
		p.rowCount = max(child.StatsCount()/10, 1)
	}
	p.cost = child.Cost() + child.StatsCount()*ctx.CPUTupleCost
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalAgg) ExplainInfo() string {
	buffer := bytes.NewBufferString("")
	if len(p.GroupBy) > 0 {
		buffer.WriteString("group by:")
		for i, c := range p.GroupBy {
			if i > 0 {
				buffer.WriteString(", ")
			}
			fmt.Fprintf(buffer, "#%d", c)
		}
		buffer.WriteString(", ")
	}
	buffer.WriteString("funcs:")
	first := true
	for _, te := range p.tlist {
		if _, ok := te.Expr.(*expression.Aggref); !ok {
			continue
		}
		if !first {
			buffer.WriteString(", ")
		}
		first = false
		fmt.Fprintf(buffer, "%s->#%d", te.Expr.String(), te.ResNo)
	}
	fmt.Fprintf(buffer, ", trans_space:%d", p.TransSpace)
	return buffer.String()
}

// PhysicalShareInput is one consumer of a materialized result that several
// consumers read. All consumers of a share have the producer as child.
type PhysicalShareInput struct {
	basePhysicalPlan

	ShareID      int
	Consumer     int
	NumConsumers int
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalShareInput) ExplainInfo() string {
	return fmt.Sprintf("share:%d, consumer:%d/%d", p.ShareID, p.Consumer, p.NumConsumers)
}

// Share returns n handles to the result of plan. With n == 1 the plan is
// returned unchanged. The producer cost is charged to the first consumer.
func Share(ctx *PlanContext, plan PhysicalPlan, n int) []PhysicalPlan {
	if n <= 1 {
		return []PhysicalPlan{plan}
	}
	shareID := ctx.AllocShareID()
	res := make([]PhysicalPlan, 0, n)
	for i := 0; i < n; i++ {
		p := &PhysicalShareInput{ShareID: shareID, Consumer: i, NumConsumers: n}
		p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeShareInput, plan)
		p.tlist = PassThroughTargetList(plan)
		p.rowCount = plan.StatsCount()
		p.cost = p.rowCount * ctx.CPUTupleCost
		if i == 0 {
			p.cost += plan.Cost()
		}
		res = append(res, p)
	}
	return res
}

// PhysicalJoin provides some common methods for join operators.
type PhysicalJoin interface {
	PhysicalPlan
	PhysicalJoinImplement()
	// GetOuterChild returns the outer input.
	GetOuterChild() PhysicalPlan
	// GetInnerChild returns the inner input.
	GetInnerChild() PhysicalPlan
}

type basePhysicalJoin struct {
	basePhysicalPlan
}

// PhysicalJoinImplement implements PhysicalJoin interface.
func (*basePhysicalJoin) PhysicalJoinImplement() {}

// GetOuterChild implements PhysicalJoin interface.
func (p *basePhysicalJoin) GetOuterChild() PhysicalPlan { return p.child(0) }

// GetInnerChild implements PhysicalJoin interface.
func (p *basePhysicalJoin) GetInnerChild() PhysicalPlan { return p.child(1) }

func (p *basePhysicalJoin) initJoin(ctx *PlanContext, tp string, outer, inner PhysicalPlan, tlist []*expression.TargetEntry) {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, tp, outer, inner)
	p.tlist = tlist
	p.rowCount = max(outer.StatsCount(), inner.StatsCount())
	p.cost = outer.Cost() + inner.Cost() + (outer.StatsCount()+inner.StatsCount())*ctx.CPUTupleCost
}

// JoinKey is an equality condition between the two inputs of a join. Op is
// types.OpEQ or types.OpNullEQ.
type JoinKey struct {
	Outer expression.Expression
	Inner expression.Expression
	Op    string
}

// String implements fmt.Stringer interface.
func (k JoinKey) String() string {
	return fmt.Sprintf("%s(%s, %s)", k.Op, k.Outer, k.Inner)
}

func explainJoinKeys(keys []JoinKey) string {
	strs := make([]string, 0, len(keys))
	for _, k := range keys {
		strs = append(strs, k.String())
	}
	return strings.Join(strs, ", ")
}

// PhysicalMergeJoin joins two inputs sorted on their keys.
type PhysicalMergeJoin struct {
	basePhysicalJoin

	Keys []JoinKey
	// UniqueOuter is set when each key value occurs at most once in the
	// outer input.
	UniqueOuter bool
}

// Init initializes PhysicalMergeJoin.
func (p PhysicalMergeJoin) Init(ctx *PlanContext, outer, inner PhysicalPlan, tlist []*expression.TargetEntry) *PhysicalMergeJoin {
	p.initJoin(ctx, TypeMergeJoin, outer, inner, tlist)
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalMergeJoin) ExplainInfo() string {
	s := "inner join, keys:" + explainJoinKeys(p.Keys)
	if p.UniqueOuter {
		s += ", unique outer"
	}
	return s
}

// PhysicalNestLoop joins every outer row with every inner row.
type PhysicalNestLoop struct {
	basePhysicalJoin

	// SingletonOuter is set when the outer input has exactly one row.
	SingletonOuter bool
}

// Init initializes PhysicalNestLoop.
func (p PhysicalNestLoop) Init(ctx *PlanContext, outer, inner PhysicalPlan, tlist []*expression.TargetEntry) *PhysicalNestLoop {
	p.initJoin(ctx, TypeNestLoop, outer, inner, tlist)
	if p.SingletonOuter {
		p.rowCount = inner.StatsCount()
	}
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalNestLoop) ExplainInfo() string {
	if p.SingletonOuter {
		return "CARTESIAN inner join, singleton outer"
	}
	return "CARTESIAN inner join"
}

// PhysicalHashJoin builds a hash table on the inner input and probes it
// with the outer input.
type PhysicalHashJoin struct {
	basePhysicalJoin

	Keys []JoinKey
}

// Init initializes PhysicalHashJoin.
func (p PhysicalHashJoin) Init(ctx *PlanContext, outer, inner PhysicalPlan, tlist []*expression.TargetEntry) *PhysicalHashJoin {
	p.initJoin(ctx, TypeHashJoin, outer, inner, tlist)
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalHashJoin) ExplainInfo() string {
	return "inner join, equal:" + explainJoinKeys(p.Keys)
}

// PhysicalSubqueryScan exposes the result of a sub-plan as a relation that
// joins address through VarNo.
type PhysicalSubqueryScan struct {
	basePhysicalPlan

	Alias string
	VarNo int
}

// Init initializes PhysicalSubqueryScan.
func (p PhysicalSubqueryScan) Init(ctx *PlanContext, child PhysicalPlan) *PhysicalSubqueryScan {
	p.basePhysicalPlan = newBasePhysicalPlan(ctx, TypeSubqueryScan, child)
	p.tlist = PassThroughTargetList(child)
	p.rowCount = child.StatsCount()
	p.cost = child.Cost() + p.rowCount*ctx.CPUTupleCost
	return &p
}

// ExplainInfo implements PhysicalPlan interface.
func (p *PhysicalSubqueryScan) ExplainInfo() string {
	return fmt.Sprintf("%s, varno:%d", p.Alias, p.VarNo)
}
