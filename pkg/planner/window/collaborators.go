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
	"github.com/pingcap/errors"
	"github.com/pingcap/failpoint"
)

// SubqueryPlanner plans the input of the window operators. The returned
// locus and path keys refer to output columns of the plan, which produces
// tlist in order.
type SubqueryPlanner interface {
	PlanCommonSubquery(
		ctx context.Context,
		pctx *core.PlanContext,
		tlist []*expression.TargetEntry,
		orderHint []*expression.SortGroupClause,
	) (core.PhysicalPlan, property.Locus, property.PathKeys, error)
}

var _ SubqueryPlanner = &core.BasicSubqueryPlanner{}

// planSubquery plans tlist through the configured SubqueryPlanner.
func (wctx *WindowContext) planSubquery(
	ctx context.Context,
	tlist []*expression.TargetEntry,
	orderHint []*expression.SortGroupClause,
) (core.PhysicalPlan, property.Locus, property.PathKeys, error) {
	plan, locus, pathKeys, err := wctx.subplanner.PlanCommonSubquery(ctx, wctx.pctx, tlist, orderHint)
	if err != nil {
		return nil, property.Locus{}, nil, errors.Trace(err)
	}
	return plan, locus, pathKeys, nil
}

// shareInput reports whether coplans read one materialized copy of their
// input.
func (wctx *WindowContext) shareInput() bool {
	share := wctx.cfg.ShareInput
	failpoint.Inject("disableShareInput", func(val failpoint.Value) {
		if val.(bool) {
			share = false
		}
	})
	return share
}
