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
	"context"
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/pingcap/tipb/go-tipb"
	"github.com/stretchr/testify/require"
)

func newTestTable() *query.RangeTblEntry {
	return &query.RangeTblEntry{
		Name: "t",
		Columns: []query.Column{
			{Name: "a", Type: types.TypeInt4},
			{Name: "b", Type: types.TypeInt4},
			{Name: "c", Type: types.TypeText},
		},
		DistKeys: []int{1},
		RowCount: 100,
	}
}

func TestPlanStringer(t *testing.T) {
	ctx := NewPlanContext(0.01, 0, 3)
	scan := PhysicalTableScan{Table: newTestTable(), VarNo: 1}.Init(ctx)
	sort := PhysicalSort{ByItems: property.PathKeys{{ResNo: 1, SortOp: types.OpLT}}}.Init(ctx, scan)
	wtlist := append(PassThroughTargetList(sort), &expression.TargetEntry{
		Expr:  &expression.WindowFunc{FuncName: "rank", RetType: types.TypeInt8},
		ResNo: 4,
	})
	win := PhysicalWindow{
		PartitionBy: []int{1},
		Levels:      []WindowLevel{{OrderBy: property.PathKeys{{ResNo: 2, SortOp: types.OpLT}}}},
	}.Init(ctx, sort, wtlist)
	shares := Share(ctx, win, 2)
	left := PhysicalSubqueryScan{Alias: "coplan", VarNo: 1}.Init(ctx, shares[0])
	agg := PhysicalAgg{GroupBy: []int{1}}.Init(ctx, shares[1], []*expression.TargetEntry{
		{Expr: expression.NewVar(1, 1, types.TypeInt4), ResNo: 1},
		{Expr: expression.NewCountStar(), ResNo: 2},
	})
	right := PhysicalSubqueryScan{Alias: "coplan", VarNo: 2}.Init(ctx, agg)
	join := PhysicalMergeJoin{
		Keys:        []JoinKey{{Outer: expression.NewVar(2, 1, types.TypeInt4), Inner: expression.NewVar(1, 1, types.TypeInt4), Op: types.OpEQ}},
		UniqueOuter: true,
	}.Init(ctx, right, left, nil)

	require.Equal(t,
		"MergeJoin{Share(0:1)->StreamAgg->coplan(2)->Table(t)->Sort(#1)->Window(rank()->#4 over(partition by #1 order by #2))->Share(0:0)->coplan(1)}($2.1,$1.1)",
		ToString(join))

	gather := PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_PassThrough}.Init(ctx, scan)
	require.Equal(t, "Table(t)->Gather", ToString(gather))
	merge := PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_PassThrough, MergeKeys: property.PathKeys{{ResNo: 1, SortOp: types.OpGT}}}.Init(ctx, scan)
	require.Equal(t, "Table(t)->Gather(#1:desc)", ToString(merge))
	require.Equal(t, "ExchangeType: PassThrough, Merge Keys: [#1:desc]", merge.ExplainInfo())
	redist := PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_Hash, HashCols: []int{2, 1}}.Init(ctx, scan)
	require.Equal(t, "Table(t)->Redistribute(#2, #1)", ToString(redist))
	require.Equal(t, "ExchangeType: HashPartition, Hash Cols: [#2, #1]", redist.ExplainInfo())
	nl := PhysicalNestLoop{SingletonOuter: true}.Init(ctx, gather, redist, nil)
	require.Equal(t, "NestLoop{Table(t)->Gather->Table(t)->Redistribute(#2, #1)}", ToString(nl))
	hj := PhysicalHashJoin{Keys: []JoinKey{{Outer: expression.NewVar(1, 5, types.TypeInt8), Inner: expression.NewVar(2, 2, types.TypeInt8), Op: types.OpEQ}}}.Init(ctx, left, right, nil)
	require.Equal(t, "inner join, equal:eq($1.5, $2.2)", hj.ExplainInfo())
}

func TestExplainText(t *testing.T) {
	ctx := NewPlanContext(0.01, 0, 3)
	scan := PhysicalTableScan{Table: newTestTable(), VarNo: 1}.Init(ctx)
	shares := Share(ctx, scan, 2)
	agg := PhysicalAgg{}.Init(ctx, shares[1], []*expression.TargetEntry{
		{Expr: &expression.Aggref{FuncName: "sum", Args: []expression.Expression{expression.NewVar(1, 2, types.TypeInt4)}, RetType: types.TypeInt8}, ResNo: 1},
	})
	nl := PhysicalNestLoop{SingletonOuter: true}.Init(ctx, agg, shares[0], nil)
	rows := ExplainText(nl)
	require.Equal(t, []string{
		"NestedLoop_5\t100.00\tCARTESIAN inner join, singleton outer",
		"├─PlainAgg_4\t1.00\tfuncs:sum($1.2)->#1, trans_space:0",
		"│ └─ShareInput_3\t100.00\tshare:0, consumer:1/2",
		"└─ShareInput_2\t100.00\tshare:0, consumer:0/2",
		"  └─TableFullScan_1\t100.00\ttable:t",
	}, rows)
}

func TestShare(t *testing.T) {
	ctx := NewPlanContext(0.01, 0, 3)
	scan := PhysicalTableScan{Table: newTestTable(), VarNo: 1}.Init(ctx)
	require.Equal(t, []PhysicalPlan{scan}, Share(ctx, scan, 1))

	shares := Share(ctx, scan, 3)
	require.Len(t, shares, 3)
	for i, s := range shares {
		si := s.(*PhysicalShareInput)
		require.Equal(t, 0, si.ShareID)
		require.Equal(t, i, si.Consumer)
		require.Same(t, scan, si.Children()[0])
		require.Len(t, si.TargetList(), 3)
	}
	require.Greater(t, shares[0].Cost(), shares[1].Cost())
	next := Share(ctx, scan, 2)
	require.Equal(t, 1, next[0].(*PhysicalShareInput).ShareID)
}

func TestExchangeCost(t *testing.T) {
	ctx := NewPlanContext(0.01, 0.5, 4)
	require.Equal(t, 0.5, ctx.MotionCostPerRow)
	scan := PhysicalTableScan{Table: newTestTable(), VarNo: 1}.Init(ctx)
	require.InDelta(t, 1.0, scan.Cost(), 1e-9)
	redist := PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_Hash, HashCols: []int{1}}.Init(ctx, scan)
	require.InDelta(t, 1.0+100*0.51, redist.Cost(), 1e-9)
	bcast := PhysicalExchangeSender{ExchangeType: tipb.ExchangeType_Broadcast}.Init(ctx, scan)
	require.InDelta(t, 1.0+400*0.51, bcast.Cost(), 1e-9)

	def := NewPlanContext(0.01, 0, 0)
	require.Equal(t, 0.02, def.MotionCostPerRow)
	require.Equal(t, 1, def.NumSegments)
}

func TestBasicSubqueryPlanner(t *testing.T) {
	tbl := newTestTable()
	tlist := []*expression.TargetEntry{
		{Expr: expression.NewVar(1, 2, types.TypeInt4), ResNo: 1, SortGroupRef: 2},
		{Expr: expression.NewVar(1, 1, types.TypeInt4), ResNo: 2, SortGroupRef: 1},
	}
	hint := []*expression.SortGroupClause{{TLESortGroupRef: 1, SortOp: types.OpLT, EqOp: types.OpEQ}}

	ctx := NewPlanContext(0.01, 0, 3)
	b := &BasicSubqueryPlanner{RangeTable: []*query.RangeTblEntry{tbl}}
	plan, locus, keys, err := b.PlanCommonSubquery(context.Background(), ctx, tlist, hint)
	require.NoError(t, err)
	require.Equal(t, "Table(t)->Projection", ToString(plan))
	require.Equal(t, property.NewHashedLocus(3, 2), locus)
	require.Nil(t, keys)

	// distribution key not projected
	plan, locus, _, err = b.PlanCommonSubquery(context.Background(), ctx, tlist[:1], nil)
	require.NoError(t, err)
	require.Equal(t, property.LocusStrewn, locus.Type)
	require.Len(t, plan.TargetList(), 1)

	entry := newTestTable()
	entry.Policy = query.PolicyEntry
	b = &BasicSubqueryPlanner{RangeTable: []*query.RangeTblEntry{entry}}
	plan, locus, keys, err = b.PlanCommonSubquery(context.Background(), ctx, tlist, hint)
	require.NoError(t, err)
	require.Equal(t, property.LocusEntry, locus.Type)
	require.Equal(t, property.PathKeys{{ResNo: 2, SortOp: types.OpLT}}, keys)
	require.Equal(t, "Table(t)->Projection->Sort(#2)", ToString(plan))

	b = &BasicSubqueryPlanner{RangeTable: []*query.RangeTblEntry{tbl, newTestTable()}}
	plan, locus, _, err = b.PlanCommonSubquery(context.Background(), ctx, tlist, nil)
	require.NoError(t, err)
	require.Equal(t, property.LocusStrewn, locus.Type)
	require.Equal(t, "NestLoop{Table(t)->Table(t)}->Projection", ToString(plan))
	require.InDelta(t, 10000.0, plan.Children()[0].StatsCount(), 1e-9)

	_, _, _, err = (&BasicSubqueryPlanner{}).PlanCommonSubquery(context.Background(), ctx, tlist, nil)
	require.Error(t, err)
}
