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
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/config"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/stretchr/testify/require"
)

// queryBuilder assembles analyzed queries over t(a, b, c, x, ts, d, j),
// hash distributed on a.
type queryBuilder struct {
	q       *query.Query
	nextRef int
}

func newQueryBuilder() *queryBuilder {
	return newQueryBuilderWithPolicy(query.PolicyHashed)
}

func newQueryBuilderWithPolicy(policy query.DistributionPolicy) *queryBuilder {
	rte := &query.RangeTblEntry{
		Name: "t",
		Columns: []query.Column{
			{Name: "a", Type: types.TypeInt4},
			{Name: "b", Type: types.TypeInt4},
			{Name: "c", Type: types.TypeInt4},
			{Name: "x", Type: types.TypeInt8},
			{Name: "ts", Type: types.TypeTimestamp},
			{Name: "d", Type: types.TypeText},
			{Name: "j", Type: types.TypeJSON},
		},
		Policy:   policy,
		DistKeys: []int{1},
		RowCount: 1000,
	}
	return &queryBuilder{q: &query.Query{RangeTable: []*query.RangeTblEntry{rte}}, nextRef: 1}
}

func (b *queryBuilder) col(name string) *expression.Var {
	rte := b.q.RangeTable[0]
	for i, c := range rte.Columns {
		if c.Name == name {
			return expression.NewVar(1, i+1, c.Type)
		}
	}
	panic("no column " + name)
}

func (b *queryBuilder) add(expr expression.Expression, name string, junk bool) *expression.TargetEntry {
	te := &expression.TargetEntry{
		Expr:    expr,
		ResNo:   len(b.q.TargetList) + 1,
		ResName: name,
		ResJunk: junk,
	}
	b.q.TargetList = append(b.q.TargetList, te)
	return te
}

// key returns an ascending sort clause on expr, adding a junk target entry
// when no entry computes it yet.
func (b *queryBuilder) key(expr expression.Expression) *expression.SortGroupClause {
	te := expression.TargetListMember(b.q.TargetList, expr)
	if te == nil {
		te = b.add(expr, expr.String(), true)
	}
	if te.SortGroupRef == 0 {
		te.SortGroupRef = b.nextRef
		b.nextRef++
	}
	return &expression.SortGroupClause{TLESortGroupRef: te.SortGroupRef, SortOp: types.OpLT}
}

func (b *queryBuilder) keys(names ...string) []*expression.SortGroupClause {
	var res []*expression.SortGroupClause
	for _, n := range names {
		res = append(res, b.key(b.col(n)))
	}
	return res
}

func (b *queryBuilder) window(part, order []string, frame ...query.Frame) int {
	wc := &query.WindowClause{PartitionClause: b.keys(part...), OrderClause: b.keys(order...)}
	if len(frame) > 0 {
		wc.Frame = frame[0]
	}
	b.q.WindowClauses = append(b.q.WindowClauses, wc)
	return len(b.q.WindowClauses) - 1
}

func (b *queryBuilder) call(fn string, winRef int, args ...expression.Expression) *expression.WindowFunc {
	wf := &expression.WindowFunc{FuncName: fn, Args: args, WinRef: winRef}
	b.add(wf, fn, false)
	return wf
}

func (b *queryBuilder) query() *query.Query {
	return b.q
}

func windowConfig(sequential bool) config.Window {
	cfg := config.NewConfig().Planner.Window
	cfg.SequentialPlans = sequential
	return cfg
}

func planQuery(t *testing.T, q *query.Query, opts ...Option) *Result {
	res, err := Plan(context.Background(), q, opts...)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func tlistStrings(tlist []*expression.TargetEntry) []string {
	res := make([]string, 0, len(tlist))
	for _, te := range tlist {
		res = append(res, te.Expr.String())
	}
	return res
}

// countPlans counts the distinct operators of type tp in plan.
func countPlans(plan core.PhysicalPlan, tp string) int {
	seen := make(map[int]struct{})
	n := 0
	var walk func(p core.PhysicalPlan)
	walk = func(p core.PhysicalPlan) {
		if _, ok := seen[p.ID()]; ok {
			return
		}
		seen[p.ID()] = struct{}{}
		if p.TP() == tp {
			n++
		}
		for _, c := range p.Children() {
			walk(c)
		}
	}
	walk(plan)
	return n
}

// recordingPlanner records the requests sent to the common subquery
// planner.
type recordingPlanner struct {
	inner SubqueryPlanner
	hints [][]*expression.SortGroupClause
	calls int
}

func (r *recordingPlanner) PlanCommonSubquery(
	ctx context.Context,
	pctx *core.PlanContext,
	tlist []*expression.TargetEntry,
	orderHint []*expression.SortGroupClause,
) (core.PhysicalPlan, property.Locus, property.PathKeys, error) {
	r.calls++
	r.hints = append(r.hints, orderHint)
	return r.inner.PlanCommonSubquery(ctx, pctx, tlist, orderHint)
}
