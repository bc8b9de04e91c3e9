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
	"fmt"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// inventoryCalls copies the projection, records a RefInfo for every window
// call and leaves a placeholder in its place.
func inventoryCalls(wctx *WindowContext) error {
	wctx.placeholders = make(map[*expression.WindowFunc]int)
	upper := make([]*expression.TargetEntry, 0, len(wctx.OrigTList))
	for _, te := range wctx.OrigTList {
		expr, err := expression.Mutate(te.Expr, func(e expression.Expression) (expression.Expression, bool, error) {
			wf, ok := e.(*expression.WindowFunc)
			if !ok {
				return nil, false, nil
			}
			ph, err := wctx.addRef(wf)
			return ph, true, err
		})
		if err != nil {
			return err
		}
		nte := *te
		nte.Expr = expr
		upper = append(upper, &nte)
	}
	wctx.UpperTList = upper
	wctx.logger.Debug("window calls collected",
		zap.Int("refs", len(wctx.RefInfos)),
		zap.Int("vars", wctx.VarIndex.Len()))
	return nil
}

func (wctx *WindowContext) addRef(wf *expression.WindowFunc) (*expression.WindowFunc, error) {
	for _, child := range expression.Children(wf) {
		if expression.ContainsWindowFunc(child) {
			return nil, plannererrors.ErrWindowNestedCall.GenWithStackByArgs()
		}
	}
	if expression.ContainsOuterVar(wf) {
		return nil, plannererrors.ErrWindowOuterReference.GenWithStackByArgs()
	}
	desc, ok := wctx.catalog.LookupFunction(wf.FuncName)
	if !ok || desc.Kind == nil {
		return nil, plannererrors.ErrWindowOrdinaryFunction.GenWithStackByArgs(wf.FuncName)
	}
	wc := wctx.Query.WindowClause(wf.WinRef)
	if wc == nil {
		return nil, plannererrors.ErrWindowNoSuchWindow.GenWithStackByArgs(fmt.Sprintf("w%d", wf.WinRef))
	}
	if desc.PartitionBoundArgs {
		if err := wctx.checkPartitionBoundArgs(wf, wc); err != nil {
			return nil, err
		}
	}

	ph := wf.Clone().(*expression.WindowFunc)
	if ph.RetType == types.TypeUnspecified && desc.ResultType != nil {
		argTypes := make([]types.TypeCode, 0, len(ph.Args))
		for _, arg := range ph.Args {
			argTypes = append(argTypes, arg.GetType())
		}
		ph.RetType = desc.ResultType(argTypes)
	}
	r := &RefInfo{
		Index:     len(wctx.RefInfos),
		Ref:       ph,
		Desc:      desc,
		Kind:      desc.Kind,
		VarSet:    wctx.VarIndex.VarSet(ph),
		SpecIndex: -1,
	}
	switch k := desc.Kind.(type) {
	case *expression.OrdinaryAggregate:
		r.TransSpace = k.TransSpace
	case *expression.LeadLagFunction:
		frame, err := leadLagFrame(k, ph)
		if err != nil {
			return nil, err
		}
		r.leadLagFrame = frame
	}
	wctx.RefInfos = append(wctx.RefInfos, r)
	wctx.placeholders[ph] = r.Index
	return ph, nil
}

// checkPartitionBoundArgs requires each argument to be constant within a
// partition of the call's window: built from constants and partition keys.
func (wctx *WindowContext) checkPartitionBoundArgs(wf *expression.WindowFunc, wc *query.WindowClause) error {
	keys := make([]expression.Expression, 0, len(wc.PartitionClause))
	for _, sc := range wc.PartitionClause {
		if te := expression.GetTLEBySortGroupRef(wctx.Query.TargetList, sc.TLESortGroupRef); te != nil {
			keys = append(keys, te.Expr)
		}
	}
	for _, arg := range wf.Args {
		if expression.ContainsVolatile(arg) {
			return plannererrors.ErrNtileVolatile.GenWithStackByArgs()
		}
		if !boundByKeys(arg, keys) {
			return plannererrors.ErrNtileArgument.GenWithStackByArgs()
		}
	}
	return nil
}

// boundByKeys reports whether e is computed from constants and keys only.
func boundByKeys(e expression.Expression, keys []expression.Expression) bool {
	if expression.IsConstant(e) {
		return true
	}
	for _, k := range keys {
		if k.Equal(e) {
			return true
		}
	}
	if _, ok := e.(*expression.Var); ok {
		return false
	}
	for _, c := range expression.Children(e) {
		if !boundByKeys(c, keys) {
			return false
		}
	}
	return true
}

// leadLagFrame builds ROWS BETWEEN k PRECEDING AND k PRECEDING for LAG and
// the FOLLOWING counterpart for LEAD. Non-constant offsets are checked when
// the query runs.
func leadLagFrame(k *expression.LeadLagFunction, wf *expression.WindowFunc) (*query.Frame, error) {
	var offset expression.Expression = expression.NewInt8Const(1)
	if len(wf.Args) > 1 {
		offset = wf.Args[1]
	}
	if c, ok := offset.(*expression.Constant); ok {
		if c.IsNull {
			return nil, plannererrors.ErrLeadLagOffsetNull.GenWithStackByArgs(k.Name())
		}
		if v, ok := c.Int64(); ok && v < 0 {
			return nil, plannererrors.ErrLeadLagOffsetNegative.GenWithStackByArgs(k.Name())
		}
	}
	opts := query.FrameNonDefault | query.FrameRows | query.FrameBetween
	if k.Lead {
		opts |= query.FrameStartValueFollowing | query.FrameEndValueFollowing
	} else {
		opts |= query.FrameStartValuePreceding | query.FrameEndValuePreceding
	}
	return &query.Frame{
		Options:     opts,
		StartOffset: offset.Clone(),
		EndOffset:   offset.Clone(),
	}, nil
}

func (wctx *WindowContext) refOfPlaceholder(wf *expression.WindowFunc) (*RefInfo, error) {
	idx, ok := wctx.placeholders[wf]
	if !ok {
		return nil, errors.Trace(plannererrors.ErrInternal.GenWithStackByArgs("window call " + wf.String() + " was not collected"))
	}
	return wctx.RefInfos[idx], nil
}
