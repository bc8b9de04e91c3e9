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
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/pingcap/tipb/go-tipb"
)

// AssureCollocationAndOrder makes the rows of every partition of partKeyAttrs
// reside in one process, sorted on sortKeys. Without a partition key all rows
// are brought to a single process. It returns the new plan with its locus and
// ordering.
func AssureCollocationAndOrder(
	pctx *core.PlanContext,
	plan core.PhysicalPlan,
	partKeyAttrs []int,
	sortKeys property.PathKeys,
	locus property.Locus,
	pathKeys property.PathKeys,
) (core.PhysicalPlan, property.Locus, property.PathKeys) {
	if len(partKeyAttrs) == 0 {
		plan, pathKeys = AssureOrder(pctx, plan, sortKeys, pathKeys)
		if locus.IsPartitioned() {
			plan = core.PhysicalExchangeSender{
				ExchangeType: tipb.ExchangeType_PassThrough,
				MergeKeys:    pathKeys.Clone(),
			}.Init(pctx, plan)
			locus = property.NewSingleLocus()
		}
		return plan, locus, pathKeys
	}
	if !locus.CollocatedOn(partKeyAttrs) {
		plan = core.PhysicalExchangeSender{
			ExchangeType: tipb.ExchangeType_Hash,
			HashCols:     append([]int(nil), partKeyAttrs...),
		}.Init(pctx, plan)
		locus = property.NewHashedLocus(pctx.NumSegments, partKeyAttrs...)
		pathKeys = nil
	}
	plan, pathKeys = AssureOrder(pctx, plan, sortKeys, pathKeys)
	return plan, locus, pathKeys
}

// AssureOrder sorts plan on sortKeys unless its ordering already starts with
// them.
func AssureOrder(
	pctx *core.PlanContext,
	plan core.PhysicalPlan,
	sortKeys property.PathKeys,
	pathKeys property.PathKeys,
) (core.PhysicalPlan, property.PathKeys) {
	if len(sortKeys) == 0 || pathKeys.Contains(sortKeys) {
		return plan, pathKeys
	}
	sort := core.PhysicalSort{ByItems: sortKeys.Clone()}.Init(pctx, plan)
	return sort, sortKeys.Clone()
}
