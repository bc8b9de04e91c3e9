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
	"fmt"
	"math"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
)

// Plan type names.
const (
	TypeTableScan      = "TableFullScan"
	TypeProjection     = "Projection"
	TypeSort           = "Sort"
	TypeExchangeSender = "ExchangeSender"
	TypeWindow         = "Window"
	TypeStreamAgg      = "StreamAgg"
	TypePlainAgg       = "PlainAgg"
	TypeShareInput     = "ShareInput"
	TypeMergeJoin      = "MergeJoin"
	TypeNestLoop       = "NestedLoop"
	TypeHashJoin       = "HashJoin"
	TypeSubqueryScan   = "SubqueryScan"
)

// PlanContext allocates plan and share ids and carries the cost settings for
// one planning run. It is not safe for concurrent use.
type PlanContext struct {
	CPUTupleCost     float64
	MotionCostPerRow float64
	NumSegments      int

	planID  int
	shareID int
}

// NewPlanContext creates a PlanContext. A non-positive motion cost defaults
// to twice the tuple cost.
func NewPlanContext(cpuTupleCost, motionCostPerRow float64, numSegments int) *PlanContext {
	if motionCostPerRow <= 0 {
		motionCostPerRow = 2 * cpuTupleCost
	}
	if numSegments <= 0 {
		numSegments = 1
	}
	return &PlanContext{
		CPUTupleCost:     cpuTupleCost,
		MotionCostPerRow: motionCostPerRow,
		NumSegments:      numSegments,
	}
}

// AllocPlanID returns a new plan id.
func (c *PlanContext) AllocPlanID() int {
	c.planID++
	return c.planID
}

// AllocShareID returns a new share id, starting at 0.
func (c *PlanContext) AllocShareID() int {
	id := c.shareID
	c.shareID++
	return id
}

// PhysicalPlan is a node of a physical plan tree. Expressions in a node's
// target list refer to the output of its first child as varno 1, except
// for joins, whose inputs are subquery scans addressed by their own varno.
type PhysicalPlan interface {
	// ID returns the plan id, unique within a PlanContext.
	ID() int
	// TP returns the plan type name.
	TP() string
	// ExplainID returns the type name and the id.
	ExplainID() string
	// ExplainInfo returns operator details.
	ExplainInfo() string
	Children() []PhysicalPlan
	SetChildren(children ...PhysicalPlan)
	// TargetList returns the output columns.
	TargetList() []*expression.TargetEntry
	// StatsCount returns the estimated number of output rows.
	StatsCount() float64
	// Cost returns the estimated total cost.
	Cost() float64
}

type basePhysicalPlan struct {
	tp       string
	id       int
	children []PhysicalPlan
	tlist    []*expression.TargetEntry
	rowCount float64
	cost     float64
}

func newBasePhysicalPlan(ctx *PlanContext, tp string, children ...PhysicalPlan) basePhysicalPlan {
	return basePhysicalPlan{tp: tp, id: ctx.AllocPlanID(), children: children}
}

// ID implements PhysicalPlan interface.
func (p *basePhysicalPlan) ID() int { return p.id }

// TP implements PhysicalPlan interface.
func (p *basePhysicalPlan) TP() string { return p.tp }

// ExplainID implements PhysicalPlan interface.
func (p *basePhysicalPlan) ExplainID() string {
	return fmt.Sprintf("%s_%d", p.tp, p.id)
}

// ExplainInfo implements PhysicalPlan interface.
func (*basePhysicalPlan) ExplainInfo() string { return "" }

// Children implements PhysicalPlan interface.
func (p *basePhysicalPlan) Children() []PhysicalPlan { return p.children }

// SetChildren implements PhysicalPlan interface.
func (p *basePhysicalPlan) SetChildren(children ...PhysicalPlan) { p.children = children }

// TargetList implements PhysicalPlan interface.
func (p *basePhysicalPlan) TargetList() []*expression.TargetEntry { return p.tlist }

// SetTargetList replaces the output columns.
func (p *basePhysicalPlan) SetTargetList(tlist []*expression.TargetEntry) { p.tlist = tlist }

// StatsCount implements PhysicalPlan interface.
func (p *basePhysicalPlan) StatsCount() float64 { return p.rowCount }

// Cost implements PhysicalPlan interface.
func (p *basePhysicalPlan) Cost() float64 { return p.cost }

func (p *basePhysicalPlan) child(i int) PhysicalPlan {
	return p.children[i]
}

// PassThroughTargetList returns entries that forward every output column of
// child unchanged.
func PassThroughTargetList(child PhysicalPlan) []*expression.TargetEntry {
	return PassThroughColumns(child, 1)
}

// PassThroughColumns forwards every output column of child, addressing it
// through varNo.
func PassThroughColumns(child PhysicalPlan, varNo int) []*expression.TargetEntry {
	in := child.TargetList()
	res := make([]*expression.TargetEntry, 0, len(in))
	for _, te := range in {
		res = append(res, &expression.TargetEntry{
			Expr:    expression.NewVar(varNo, te.ResNo, te.Expr.GetType()),
			ResNo:   len(res) + 1,
			ResName: te.ResName,
			ResJunk: te.ResJunk,
		})
	}
	return res
}

func log2Rows(rows float64) float64 {
	return math.Log2(math.Max(rows, 2))
}
