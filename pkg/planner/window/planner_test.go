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
	"strings"
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/metrics"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// twoRankingCalls is select a, row_number() over (partition by a order by b),
// rank() over (partition by a order by b).
func twoRankingCalls() *query.Query {
	b := newQueryBuilder()
	b.add(b.col("a"), "a", false)
	w0 := b.window([]string{"a"}, []string{"b"})
	w1 := b.window([]string{"a"}, []string{"b"})
	b.call("row_number", w0)
	b.call("rank", w1)
	return b.query()
}

// aggregateAndRanking is select a, sum(x) over (partition by a),
// row_number() over (partition by a order by b).
func aggregateAndRanking() *query.Query {
	b := newQueryBuilder()
	b.add(b.col("a"), "a", false)
	w0 := b.window([]string{"a"}, nil)
	w1 := b.window([]string{"a"}, []string{"b"})
	b.call("sum", w0, b.col("x"))
	b.call("row_number", w1)
	return b.query()
}

// threePartitionings ranks over three partitionings and sums over a.
func threePartitionings() *query.Query {
	b := newQueryBuilder()
	b.add(b.col("a"), "a", false)
	w0 := b.window([]string{"a"}, []string{"x"})
	w1 := b.window([]string{"b"}, []string{"x"})
	w2 := b.window([]string{"c"}, []string{"x"})
	w3 := b.window([]string{"a"}, nil)
	b.call("rank", w0)
	b.call("rank", w1)
	b.call("rank", w2)
	b.call("sum", w3, b.col("x"))
	return b.query()
}

func TestTrivialPlan(t *testing.T) {
	res := planQuery(t, twoRankingCalls(), WithConfig(windowConfig(false)))
	require.Equal(t, StrategyTrivial, res.Strategy)
	require.Len(t, res.Context.SpecInfos, 1)
	require.Len(t, res.Context.WindowInfos, 1)
	require.Equal(t,
		"Table(t)->Projection->Sort(#1, #2)->Window(row_number()->#3 over(partition by #1 order by #2), rank()->#4 over(partition by #1 order by #2))",
		core.ToString(res.Plan))
	require.Equal(t, []string{"$1.1", "$1.2", "$1.3", "$1.4"}, tlistStrings(res.TargetList))
	require.Equal(t, property.LocusHashed, res.Locus.Type)
	require.Equal(t, []int{1}, res.Locus.HashAttrs)
	require.Equal(t, ResultRelation, res.RangeTable.Name)
	require.Equal(t, query.PolicyHashed, res.RangeTable.Policy)
	require.Len(t, res.RangeTable.Columns, 4)
}

func TestTrivialPlanIgnoresSequentialSetting(t *testing.T) {
	res := planQuery(t, twoRankingCalls(), WithConfig(windowConfig(true)))
	require.Equal(t, StrategyTrivial, res.Strategy)
}

func TestLagFrame(t *testing.T) {
	b := newQueryBuilder()
	w0 := b.window(nil, []string{"ts"})
	b.call("lag", w0, b.col("x"), expression.NewInt8Const(2))

	res := planQuery(t, b.query(), WithConfig(windowConfig(false)))
	require.Equal(t, StrategyTrivial, res.Strategy)
	require.Len(t, res.Context.SpecInfos, 1)
	require.Equal(t, "rows between 2 preceding and 2 preceding", res.Context.SpecInfos[0].Frame.String())
	require.Equal(t,
		"Table(t)->Projection->Sort(#1)->Gather(#1)->Window(lag($1.2, 2)->#3 over(order by #1 rows between 2 preceding and 2 preceding))",
		core.ToString(res.Plan))
	require.True(t, res.Locus.IsSingle())
	require.Equal(t, types.TypeInt8, res.TargetList[1].Expr.GetType())
}

func TestLagFrameOverColumnOffset(t *testing.T) {
	b := newQueryBuilder()
	w0 := b.window(nil, []string{"ts"})
	b.call("lag", w0, b.col("x"), b.col("b"))

	res := planQuery(t, b.query(), WithConfig(windowConfig(false)))
	require.Equal(t, StrategyTrivial, res.Strategy)
	require.Equal(t, []string{"$1.5", "$1.4", "$1.2"}, tlistStrings(res.Context.KeyedLowerTList))
	require.Equal(t,
		"Table(t)->Projection->Sort(#1)->Gather(#1)->Window(lag($1.2, $1.3)->#4 over(order by #1 rows between $1.3 preceding and $1.3 preceding))",
		core.ToString(res.Plan))

	// the frame of the analyzed spec still reads the base table
	require.Equal(t, "rows between $1.2 preceding and $1.2 preceding", res.Context.SpecInfos[0].Frame.String())
}

func TestSequentialPlanWithAggregate(t *testing.T) {
	res := planQuery(t, aggregateAndRanking(), WithConfig(windowConfig(true)))
	require.Equal(t, StrategySequential, res.Strategy)
	require.Len(t, res.Context.SpecInfos, 2)
	require.Len(t, res.Context.WindowInfos, 1)
	require.True(t, res.Context.WindowInfos[0].NeedPartKey)
	require.True(t, res.Context.HasUnorderedAggs)
	require.Equal(t,
		"MergeJoin{Share(0:1)->StreamAgg->coplan(2)->Table(t)->Projection->Sort(#1, #2)->Share(0:0)->Window(row_number()->#5 over(partition by #1 order by #2))->coplan(1)}($2.1,$1.1)->coplan(1)",
		core.ToString(res.Plan))
	require.Equal(t, []string{"$1.1", "$1.2", "$1.4", "$1.5"}, tlistStrings(res.TargetList))
}

func TestParallelPlanWithAggregate(t *testing.T) {
	res := planQuery(t, aggregateAndRanking(), WithConfig(windowConfig(false)))
	require.Equal(t, StrategyParallel, res.Strategy)
	require.Equal(t,
		"HashJoin{Table(t)->Projection->Sort(#1, #2)->Share(0:0)->Window(row_number()->#4 over(partition by #1 order by #2))->coplan(1)->Share(0:1)->StreamAgg->coplan(2)}($1.1,$2.1)",
		core.ToString(res.Plan))
	require.Equal(t, "$1.6", res.TargetList[2].Expr.String())
	require.Equal(t, "$1.4", res.TargetList[3].Expr.String())
	require.Equal(t, property.LocusHashed, res.Locus.Type)
	require.Equal(t, []int{1}, res.Locus.HashAttrs)
	require.Nil(t, res.PathKeys)
}

func TestParallelPlanCoplans(t *testing.T) {
	res := planQuery(t, threePartitionings(), WithConfig(windowConfig(false)))
	require.Equal(t, StrategyParallel, res.Strategy)
	wctx := res.Context
	require.Len(t, wctx.WindowInfos, 3)
	require.Equal(t, []int{5, 6}, wctx.RowKeyAttrs)

	require.Len(t, wctx.Coplans, 4)
	var kinds []CoplanType
	for i, c := range wctx.Coplans {
		require.Equal(t, i+1, c.VarNo)
		kinds = append(kinds, c.Type)
	}
	require.Equal(t, []CoplanType{CoplanWindow, CoplanAgg, CoplanWindow, CoplanWindow}, kinds)
	require.Equal(t,
		"Share(0:1)->Redistribute(#3)->Sort(#3, #2)->Window(rank()->#3 over(partition by #3 order by #2))->coplan(3)",
		core.ToString(wctx.Coplans[2].Plan))
	require.Equal(t,
		"Share(0:2)->Redistribute(#4)->Sort(#4, #2)->Window(rank()->#3 over(partition by #4 order by #2))->coplan(4)",
		core.ToString(wctx.Coplans[3].Plan))
	require.Equal(t, 1, countPlans(res.Plan, core.TypeTableScan))
}

func TestParallelPlanWithoutSharing(t *testing.T) {
	cfg := windowConfig(false)
	cfg.ShareInput = false
	q := threePartitionings()
	rec := &recordingPlanner{inner: &core.BasicSubqueryPlanner{RangeTable: q.RangeTable}}
	res := planQuery(t, q, WithConfig(cfg), WithSubqueryPlanner(rec))
	require.Equal(t, StrategyParallel, res.Strategy)
	for _, hint := range rec.hints {
		require.Empty(t, hint)
	}

	// Row keys are stamped once and every window coplan reads them through
	// one share. Only the aggregate coplan plans its own input.
	require.Equal(t, 2, rec.calls)
	require.Equal(t, 2, countPlans(res.Plan, core.TypeTableScan))
	require.Equal(t, 3, countPlans(res.Plan, core.TypeShareInput))
	require.Equal(t, 4, countPlans(res.Plan, core.TypeWindow))
	wctx := res.Context
	require.Equal(t,
		"Table(t)->Projection->Sort(#1, #2)->StreamAgg->coplan(2)",
		core.ToString(wctx.Coplans[1].Plan))
	require.Equal(t,
		"Share(0:1)->Redistribute(#3)->Sort(#3, #2)->Window(rank()->#3 over(partition by #3 order by #2))->coplan(3)",
		core.ToString(wctx.Coplans[2].Plan))
}

func TestSequentialStages(t *testing.T) {
	b := newQueryBuilder()
	w0 := b.window([]string{"a"}, []string{"b"})
	w1 := b.window([]string{"a"}, []string{"c"})
	w2 := b.window(nil, []string{"b"})
	b.call("rank", w0)
	b.call("rank", w1)
	b.call("row_number", w2)

	res := planQuery(t, b.query(), WithConfig(windowConfig(true)))
	require.Equal(t, StrategySequential, res.Strategy)
	require.Equal(t,
		"Table(t)->Projection->Sort(#1, #2)->Window(rank()->#4 over(partition by #1 order by #2))->Sort(#1, #3)->Window(rank()->#5 over(partition by #1 order by #3))->coplan(1)->Sort(#2)->Gather(#2)->Window(row_number()->#6 over(order by #2))->coplan(1)",
		core.ToString(res.Plan))
	require.True(t, res.Locus.IsSingle())
	require.Equal(t, property.PathKeys{{ResNo: 2, SortOp: types.OpLT}}, res.PathKeys)
	require.Equal(t, query.PolicyEntry, res.RangeTable.Policy)
}

func deferredCumeDist() *query.Query {
	b := newQueryBuilder()
	b.add(b.col("a"), "a", false)
	w0 := b.window([]string{"a"}, []string{"b"})
	b.call("cume_dist", w0)
	return b.query()
}

func TestDeferredFinalization(t *testing.T) {
	res := planQuery(t, deferredCumeDist(), WithConfig(windowConfig(false)))
	require.Equal(t, StrategyParallel, res.Strategy)
	require.True(t, res.Context.HasDeferredWindowFns)
	require.Equal(t, WindowDeferred, res.Context.RefInfos[0].Class)
	require.Equal(t, "cume_dist_final($1.3, $1.5)", res.TargetList[2].Expr.String())
	require.Equal(t, types.TypeFloat8, res.TargetList[2].Expr.GetType())
	require.Contains(t, core.ToString(res.Plan), "cume_dist[prelim]()->#3 over(partition by #1 order by #2)")

	res = planQuery(t, deferredCumeDist(), WithConfig(windowConfig(true)))
	require.Equal(t, StrategySequential, res.Strategy)
	require.Equal(t, "$1.3", res.TargetList[2].Expr.String())
}

func TestOutputHasNoWindowCalls(t *testing.T) {
	queries := []func() *query.Query{twoRankingCalls, aggregateAndRanking, threePartitionings, deferredCumeDist}
	for _, sequential := range []bool{false, true} {
		for _, mk := range queries {
			q := mk()
			res := planQuery(t, q, WithConfig(windowConfig(sequential)))
			require.Len(t, res.TargetList, len(q.TargetList))
			for _, te := range res.TargetList {
				require.False(t, expression.ContainsWindowFunc(te.Expr), te.Expr.String())
				for _, v := range expression.PullVars(te.Expr) {
					require.Equal(t, 1, v.VarNo)
					require.LessOrEqual(t, v.AttNo, len(res.Plan.TargetList()))
				}
			}
			for _, r := range res.Context.RefInfos {
				require.NotNil(t, r.ResultExpr, r.Ref.String())
			}
			require.Len(t, res.RangeTable.Columns, len(res.Plan.TargetList()))
		}
	}
}

func TestInputQueryUnchanged(t *testing.T) {
	q := aggregateAndRanking()
	before := expression.TargetListString(q.TargetList)
	planQuery(t, q, WithConfig(windowConfig(false)))
	require.Equal(t, before, expression.TargetListString(q.TargetList))
}

// permuteWindows reverses the window clauses of q and remaps the calls.
func permuteWindows(q *query.Query) {
	n := len(q.WindowClauses)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		q.WindowClauses[i], q.WindowClauses[j] = q.WindowClauses[j], q.WindowClauses[i]
	}
	for _, te := range q.TargetList {
		expression.Walk(te.Expr, func(e expression.Expression) bool {
			if wf, ok := e.(*expression.WindowFunc); ok {
				wf.WinRef = n - 1 - wf.WinRef
			}
			return true
		})
	}
}

func TestPlanIgnoresClauseOrder(t *testing.T) {
	for _, sequential := range []bool{false, true} {
		cfg := windowConfig(sequential)
		res1 := planQuery(t, threePartitionings(), WithConfig(cfg))
		q := threePartitionings()
		permuteWindows(q)
		res2 := planQuery(t, q, WithConfig(cfg))
		require.Equal(t, core.ToString(res1.Plan), core.ToString(res2.Plan))
		require.Equal(t, tlistStrings(res1.TargetList), tlistStrings(res2.TargetList))
	}
}

func TestWindowPrefixInvariant(t *testing.T) {
	res := planQuery(t, threePartitionings(), WithConfig(windowConfig(false)))
	wctx := res.Context
	require.NoError(t, checkPrefixInvariant(wctx))
	for _, w := range wctx.WindowInfos {
		for _, s := range wctx.SpecInfos[w.FirstSpecIndex : w.FirstSpecIndex+w.NumSpecIndex] {
			require.Equal(t, w.Index, s.WindowIndex)
			require.True(t, s.PartSet.Equals(w.PartSet))
		}
	}

	w := wctx.WindowInfos[0]
	w.SortClause = w.SortClause[:w.PartKeyLen]
	err := checkPrefixInvariant(wctx)
	require.Error(t, err)
}

func TestTrivialPlanHonoursInputOrder(t *testing.T) {
	b := newQueryBuilderWithPolicy(query.PolicyEntry)
	b.add(b.col("a"), "a", false)
	w0 := b.window([]string{"a"}, []string{"b"})
	b.call("rank", w0)

	rec := &recordingPlanner{inner: &core.BasicSubqueryPlanner{RangeTable: b.query().RangeTable}}
	res := planQuery(t, b.query(), WithConfig(windowConfig(false)), WithSubqueryPlanner(rec))
	require.Equal(t, 1, rec.calls)
	require.Len(t, rec.hints[0], 2)
	require.Equal(t, 1, countPlans(res.Plan, core.TypeSort))
	require.Equal(t, 0, countPlans(res.Plan, core.TypeExchangeSender))
	require.True(t, res.Locus.IsSingle())
}

func TestPlanTracing(t *testing.T) {
	tracer := mocktracer.New()
	root := tracer.StartSpan("root")
	ctx := opentracing.ContextWithSpan(context.Background(), root)
	_, err := Plan(ctx, twoRankingCalls(), WithConfig(windowConfig(false)))
	require.NoError(t, err)
	root.Finish()

	var found *mocktracer.MockSpan
	for _, s := range tracer.FinishedSpans() {
		if s.OperationName == "planner.window" {
			found = s
		}
	}
	require.NotNil(t, found)
	require.Equal(t, "trivial", found.Tag("window.strategy"))
}

func TestStrategyMetrics(t *testing.T) {
	counter := metrics.WindowPlanStrategyCounter.WithLabelValues(metrics.StrategyParallel)
	before := testutil.ToFloat64(counter)
	planQuery(t, aggregateAndRanking(), WithConfig(windowConfig(false)))
	require.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStrategyString(t *testing.T) {
	require.Equal(t, "trivial", StrategyTrivial.String())
	require.Equal(t, "sequential", StrategySequential.String())
	require.Equal(t, "parallel", StrategyParallel.String())
	require.True(t, strings.HasPrefix(Strategy(9).String(), "unknown"))
}
