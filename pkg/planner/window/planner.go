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
	"fmt"
	"time"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/config"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/metrics"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/logutil"
	"github.com/opentracing/opentracing-go"
	"github.com/pingcap/errors"
	"github.com/pingcap/failpoint"
	"go.uber.org/zap"
)

// Strategy is the shape of a window plan.
type Strategy byte

const (
	// StrategyTrivial stacks one window operator on the common subquery.
	StrategyTrivial Strategy = iota
	// StrategySequential evaluates the windows one stage after another.
	StrategySequential
	// StrategyParallel evaluates every window over its own copy of the input
	// and joins the results on a synthetic row key.
	StrategyParallel
)

// String implements fmt.Stringer interface.
func (s Strategy) String() string {
	switch s {
	case StrategyTrivial:
		return metrics.StrategyTrivial
	case StrategySequential:
		return metrics.StrategySequential
	case StrategyParallel:
		return metrics.StrategyParallel
	}
	return fmt.Sprintf("unknown(%d)", byte(s))
}

// ResultRelation is the name of the relation the output target list reads.
const ResultRelation = "window_result"

// Result is a planned window query.
type Result struct {
	Plan     core.PhysicalPlan
	PathKeys property.PathKeys
	Locus    property.Locus
	// TargetList is the projection of the query over RangeTable.
	TargetList []*expression.TargetEntry
	RangeTable *query.RangeTblEntry
	Strategy   Strategy
	Context    *WindowContext
}

type options struct {
	subplanner SubqueryPlanner
	catalog    expression.FunctionCatalog
	cfg        *config.Window
}

// Option configures Plan.
type Option func(*options)

// WithSubqueryPlanner sets the planner of the window input. The default
// scans the query's range table.
func WithSubqueryPlanner(sp SubqueryPlanner) Option {
	return func(o *options) { o.subplanner = sp }
}

// WithCatalog sets the catalog window calls are resolved in.
func WithCatalog(c expression.FunctionCatalog) Option {
	return func(o *options) { o.catalog = c }
}

// WithConfig overrides the global window planner configuration.
func WithConfig(cfg config.Window) Option {
	return func(o *options) { o.cfg = &cfg }
}

// Plan builds the physical plan computing the window calls of q.
func Plan(ctx context.Context, q *query.Query, opts ...Option) (res *Result, err error) {
	if span := opentracing.SpanFromContext(ctx); span != nil && span.Tracer() != nil {
		span1 := span.Tracer().StartSpan("planner.window", opentracing.ChildOf(span.Context()))
		defer span1.Finish()
		ctx = opentracing.ContextWithSpan(ctx, span1)
	}
	start := time.Now()
	defer func() {
		metrics.WindowPlanDuration.WithLabelValues(metrics.RetLabel(err)).Observe(time.Since(start).Seconds())
	}()

	o := options{catalog: expression.BuiltinCatalog()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		cfg := config.GetGlobalConfig().Planner.Window
		o.cfg = &cfg
	}
	if o.subplanner == nil {
		o.subplanner = &core.BasicSubqueryPlanner{RangeTable: q.RangeTable}
	}
	ctx = logutil.WithCategory(ctx, "planner.window")
	ctx = logutil.WithQueryID(ctx, q.Digest())
	wctx := newWindowContext(ctx, q, &o)

	res, err = wctx.plan(ctx)
	if err != nil {
		if plannererrors.ErrInternal.Equal(err) {
			wctx.logger.Warn("failed to plan window query",
				zap.Int("windowCalls", q.NumWindowCalls()),
				zap.String("code", metrics.ErrorToLabel(err)),
				zap.Error(err))
		}
		return nil, err
	}
	return res, nil
}

func newWindowContext(ctx context.Context, q *query.Query, o *options) *WindowContext {
	return &WindowContext{
		Query:      q,
		OrigTList:  q.TargetList,
		cfg:        *o.cfg,
		catalog:    o.catalog,
		subplanner: o.subplanner,
		pctx:       core.NewPlanContext(o.cfg.CPUTupleCost, o.cfg.EffectiveMotionCostPerRow(), o.cfg.NumSegments),
		logger:     logutil.Logger(ctx),
	}
}

// analyze runs the passes that precede planning the common subquery.
func (wctx *WindowContext) analyze() error {
	var err error
	if wctx.VarIndex, err = BuildVarIndex(wctx.Query, wctx.OrigTList); err != nil {
		return err
	}
	if err = inventoryCalls(wctx); err != nil {
		return err
	}
	if len(wctx.RefInfos) == 0 {
		return plannererrors.ErrInternal.GenWithStackByArgs("query has no window calls")
	}
	if err = dedupSpecs(wctx); err != nil {
		return err
	}
	if err = groupSpecs(wctx); err != nil {
		return err
	}
	return buildLowerTList(wctx)
}

func (wctx *WindowContext) chooseStrategy() Strategy {
	strategy := StrategyParallel
	switch {
	case len(wctx.WindowInfos) == 1 && !wctx.HasUnorderedAggs && !wctx.HasDeferredWindowFns:
		strategy = StrategyTrivial
	case wctx.cfg.SequentialPlans:
		strategy = StrategySequential
	}
	failpoint.Inject("forceWindowStrategy", func(val failpoint.Value) {
		strategy = Strategy(val.(int))
	})
	return strategy
}

func (wctx *WindowContext) plan(ctx context.Context) (*Result, error) {
	if err := wctx.analyze(); err != nil {
		return nil, errors.Trace(err)
	}
	metrics.WindowSpecsPerQuery.Observe(float64(len(wctx.SpecInfos)))

	strategy := wctx.chooseStrategy()
	logutil.SetTag(ctx, "window.strategy", strategy.String())
	wctx.logger.Debug("window plan strategy",
		zap.Stringer("strategy", strategy),
		zap.Int("windows", len(wctx.WindowInfos)),
		zap.Int("specs", len(wctx.SpecInfos)))

	var (
		plan     core.PhysicalPlan
		locus    property.Locus
		pathKeys property.PathKeys
		err      error
	)
	switch strategy {
	case StrategyTrivial:
		plan, locus, pathKeys, err = buildTrivialPlan(ctx, wctx)
	case StrategySequential:
		plan, locus, pathKeys, err = buildSequentialPlan(ctx, wctx)
	case StrategyParallel:
		plan, locus, pathKeys, err = buildParallelPlan(ctx, wctx)
	default:
		err = plannererrors.ErrInternal.GenWithStackByArgs(fmt.Sprintf("unknown window plan strategy %s", strategy))
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	metrics.WindowPlanStrategyCounter.WithLabelValues(strategy.String()).Inc()

	tlist, err := translateTList(wctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	logutil.Event(ctx, "window plan built")
	return &Result{
		Plan:       plan,
		PathKeys:   pathKeys,
		Locus:      locus,
		TargetList: tlist,
		RangeTable: resultRangeTable(plan, locus),
		Strategy:   strategy,
		Context:    wctx,
	}, nil
}

func resultRangeTable(plan core.PhysicalPlan, locus property.Locus) *query.RangeTblEntry {
	rte := &query.RangeTblEntry{Name: ResultRelation, RowCount: plan.StatsCount()}
	for _, te := range plan.TargetList() {
		name := te.ResName
		if name == "" {
			name = fmt.Sprintf("column%d", te.ResNo)
		}
		rte.Columns = append(rte.Columns, query.Column{Name: name, Type: te.Expr.GetType()})
	}
	switch {
	case locus.Type == property.LocusHashed:
		rte.Policy = query.PolicyHashed
		rte.DistKeys = append([]int(nil), locus.HashAttrs...)
	case locus.Type == property.LocusReplicated:
		rte.Policy = query.PolicyReplicated
	case locus.IsSingle():
		rte.Policy = query.PolicyEntry
	default:
		rte.Policy = query.PolicyRandom
	}
	return rte
}
