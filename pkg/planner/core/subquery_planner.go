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

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/property"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/pingcap/errors"
)

// BasicSubqueryPlanner plans the input of the window operators as a scan
// of the range table topped by a projection of the requested target list.
// Several relations are combined with a cartesian product.
type BasicSubqueryPlanner struct {
	RangeTable []*query.RangeTblEntry
}

// PlanCommonSubquery returns a plan producing tlist, with its locus and
// ordering. The locus and ordering are expressed in output columns. The
// order hint is honoured only when the rows already sit in one process.
func (b *BasicSubqueryPlanner) PlanCommonSubquery(
	_ context.Context,
	ctx *PlanContext,
	tlist []*expression.TargetEntry,
	orderHint []*expression.SortGroupClause,
) (PhysicalPlan, property.Locus, property.PathKeys, error) {
	if len(b.RangeTable) == 0 {
		return nil, property.Locus{}, nil, plannererrors.ErrInternal.GenWithStackByArgs("no relation to plan the window input from")
	}
	var input PhysicalPlan
	for i, rte := range b.RangeTable {
		scan := PhysicalTableScan{Table: rte, VarNo: i + 1}.Init(ctx)
		if input == nil {
			input = scan
			continue
		}
		nl := PhysicalNestLoop{}.Init(ctx, input, scan, nil)
		nl.rowCount = input.StatsCount() * scan.StatsCount()
		input = nl
	}
	for _, te := range tlist {
		if te.ResNo < 1 || te.ResNo > len(tlist) || tlist[te.ResNo-1] != te {
			return nil, property.Locus{}, nil, errors.Trace(plannererrors.ErrInternal.GenWithStackByArgs("target list resno out of order"))
		}
	}
	proj := PhysicalProjection{}.Init(ctx, input, expression.CloneTargetList(tlist))
	locus := b.inputLocus(ctx, tlist)

	var plan PhysicalPlan = proj
	var pathKeys property.PathKeys
	if locus.IsSingle() && len(orderHint) > 0 {
		if keys, ok := resolveOrderHint(tlist, orderHint); ok {
			sort := PhysicalSort{ByItems: keys}.Init(ctx, proj)
			plan, pathKeys = sort, keys
		}
	}
	return plan, locus, pathKeys, nil
}

func (b *BasicSubqueryPlanner) inputLocus(ctx *PlanContext, tlist []*expression.TargetEntry) property.Locus {
	if len(b.RangeTable) != 1 {
		for _, rte := range b.RangeTable {
			if rte.Policy != query.PolicyEntry {
				return property.Locus{Type: property.LocusStrewn, NumSegments: ctx.NumSegments}
			}
		}
		return property.Locus{Type: property.LocusEntry, NumSegments: 1}
	}
	rte := b.RangeTable[0]
	switch rte.Policy {
	case query.PolicyEntry:
		return property.Locus{Type: property.LocusEntry, NumSegments: 1}
	case query.PolicyReplicated:
		return property.Locus{Type: property.LocusReplicated, NumSegments: ctx.NumSegments}
	case query.PolicyHashed:
		attrs := make([]int, 0, len(rte.DistKeys))
		for _, attNo := range rte.DistKeys {
			te := expression.TargetListMember(tlist, expression.NewVar(1, attNo, rte.ColumnType(attNo)))
			if te == nil {
				attrs = nil
				break
			}
			attrs = append(attrs, te.ResNo)
		}
		if len(attrs) > 0 {
			return property.NewHashedLocus(ctx.NumSegments, attrs...)
		}
	}
	return property.Locus{Type: property.LocusStrewn, NumSegments: ctx.NumSegments}
}

func resolveOrderHint(tlist []*expression.TargetEntry, hint []*expression.SortGroupClause) (property.PathKeys, bool) {
	keys := make(property.PathKeys, 0, len(hint))
	for _, sc := range hint {
		te := expression.GetTLEBySortGroupRef(tlist, sc.TLESortGroupRef)
		if te == nil {
			return nil, false
		}
		keys = append(keys, property.SortItem{ResNo: te.ResNo, SortOp: sc.SortOp, NullsFirst: sc.NullsFirst})
	}
	return keys, true
}
