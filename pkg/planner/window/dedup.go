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
	"cmp"
	"slices"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/intset"
	"go.uber.org/zap"
)

func windowName(wc *query.WindowClause) string {
	if wc.Name == "" {
		return "<unnamed window>"
	}
	return wc.Name
}

func checkFrame(wc *query.WindowClause) error {
	opts := wc.Frame.Options
	if opts.IsDefault() {
		return nil
	}
	if len(wc.OrderClause) == 0 {
		return plannererrors.ErrWindowFrameUnordered.GenWithStackByArgs()
	}
	if opts.Has(query.FrameStartUnboundedFollowing) {
		return plannererrors.ErrWindowFrameStartIllegal.GenWithStackByArgs(windowName(wc))
	}
	if opts.Has(query.FrameEndUnboundedPreceding) {
		return plannererrors.ErrWindowFrameEndIllegal.GenWithStackByArgs(windowName(wc))
	}
	if opts.Has(query.FrameBetween) && opts.StartIsFollowing() && opts.EndIsPrecedingOrCurrent() {
		return plannererrors.ErrWindowFrameIllegal.GenWithStackByArgs(windowName(wc))
	}
	return nil
}

func newSpecInfo(wc *query.WindowClause, frame query.Frame) *SpecInfo {
	s := &SpecInfo{
		PartKey:     wc.PartitionClause,
		Order:       wc.OrderClause,
		Frame:       frame,
		WindowIndex: -1,
	}
	for _, sc := range wc.PartitionClause {
		s.PartSet.Insert(sc.TLESortGroupRef)
	}
	var seen intset.FastIntSet
	for _, sc := range wc.OrderClause {
		if s.PartSet.Has(sc.TLESortGroupRef) || seen.Has(sc.TLESortGroupRef) {
			continue
		}
		seen.Insert(sc.TLESortGroupRef)
		s.UniqueOrder = append(s.UniqueOrder, sc)
	}
	return s
}

// compareSpecInfo is a total order on the content of two specifications.
func compareSpecInfo(a, b *SpecInfo) int {
	if c := a.PartSet.Compare(b.PartSet); c != 0 {
		return c
	}
	if c := expression.CompareSortClauses(a.UniqueOrder, b.UniqueOrder); c != 0 {
		return c
	}
	if c := expression.CompareSortClauses(a.Order, b.Order); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Frame.Options, b.Frame.Options); c != 0 {
		return c
	}
	if c := expression.Compare(a.Frame.StartOffset, b.Frame.StartOffset); c != 0 {
		return c
	}
	return expression.Compare(a.Frame.EndOffset, b.Frame.EndOffset)
}

// dedupSpecs builds the SpecInfos of the window calls, merges identical ones
// and classifies every call.
func dedupSpecs(wctx *WindowContext) error {
	q := wctx.Query
	specs := make([]*SpecInfo, 0, len(q.WindowClauses)+len(wctx.RefInfos))
	for _, wc := range q.WindowClauses {
		if err := checkFrame(wc); err != nil {
			return err
		}
		specs = append(specs, newSpecInfo(wc, wc.Frame))
	}
	for _, r := range wctx.RefInfos {
		if r.leadLagFrame == nil {
			specs[r.Ref.WinRef].RefSet.Insert(r.Index)
			continue
		}
		s := newSpecInfo(q.WindowClauses[r.Ref.WinRef], *r.leadLagFrame)
		s.RefSet.Insert(r.Index)
		specs = append(specs, s)
	}

	slices.SortStableFunc(specs, compareSpecInfo)
	merged := specs[:0:0]
	for _, s := range specs {
		if n := len(merged); n > 0 && compareSpecInfo(merged[n-1], s) == 0 {
			merged[n-1].RefSet.UnionWith(s.RefSet)
			continue
		}
		merged = append(merged, s)
	}
	wctx.SpecInfos = wctx.SpecInfos[:0]
	for _, s := range merged {
		if s.RefSet.IsEmpty() {
			continue
		}
		s.SpecIndex = len(wctx.SpecInfos)
		wctx.SpecInfos = append(wctx.SpecInfos, s)
		s.RefSet.ForEach(func(i int) {
			wctx.RefInfos[i].SpecIndex = s.SpecIndex
		})
	}

	for _, r := range wctx.RefInfos {
		if r.SpecIndex < 0 {
			return plannererrors.ErrInternal.GenWithStackByArgs("window call " + r.Ref.String() + " has no specification")
		}
		classifyRef(r, wctx.SpecInfos[r.SpecIndex])
		switch r.Class {
		case AggregateUnordered:
			wctx.HasUnorderedAggs = true
		case WindowDeferred:
			wctx.HasDeferredWindowFns = true
		}
	}
	wctx.logger.Debug("window specifications deduplicated",
		zap.Int("clauses", len(q.WindowClauses)),
		zap.Int("specs", len(wctx.SpecInfos)),
		zap.Bool("unorderedAggs", wctx.HasUnorderedAggs),
		zap.Bool("deferred", wctx.HasDeferredWindowFns))
	return nil
}

func classifyRef(r *RefInfo, s *SpecInfo) {
	switch {
	case r.Kind.IsAggregate() && len(s.Order) == 0:
		r.Class = AggregateUnordered
	case r.Kind.IsAggregate():
		r.Class = AggregateOrdered
	case r.Desc.IsDeferred():
		r.Class = WindowDeferred
	default:
		r.Class = WindowImmediate
	}
}
