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

package expression

import (
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
)

// WindowCallKind classifies a function that may appear with an OVER clause.
// The set of implementations is closed: OrdinaryAggregate, RankingFunction,
// ValueFunction and LeadLagFunction.
type WindowCallKind interface {
	// IsAggregate reports whether the call may also be evaluated by an
	// ordinary aggregation operator.
	IsAggregate() bool
	windowCallKind()
}

// OrdinaryAggregate is an aggregate used as a window function.
type OrdinaryAggregate struct {
	// TransSpace estimates the bytes of transition state per group.
	TransSpace int64
}

// IsAggregate implements WindowCallKind interface.
func (*OrdinaryAggregate) IsAggregate() bool { return true }
func (*OrdinaryAggregate) windowCallKind()   {}

// DeferredFinalize describes a ranking function whose value depends on the
// partition row count. The window operator emits a preliminary value of type
// PrelimType, and FinalFunc(prelim, count) produces the result.
type DeferredFinalize struct {
	PrelimType types.TypeCode
	FinalFunc  string
}

// RankingFunction is a pure window function such as rank() or ntile().
type RankingFunction struct {
	// Deferred is nil for functions that are computed in a single pass.
	Deferred *DeferredFinalize
}

// IsAggregate implements WindowCallKind interface.
func (*RankingFunction) IsAggregate() bool { return false }
func (*RankingFunction) windowCallKind()   {}

// ValueFunction returns a value from a row of the frame.
type ValueFunction struct{}

// IsAggregate implements WindowCallKind interface.
func (*ValueFunction) IsAggregate() bool { return false }
func (*ValueFunction) windowCallKind()   {}

// LeadLagFunction reads a row at a fixed offset from the current row. The
// planner gives each call its own frame built from the offset argument.
type LeadLagFunction struct {
	Lead bool
}

// IsAggregate implements WindowCallKind interface.
func (*LeadLagFunction) IsAggregate() bool { return false }
func (*LeadLagFunction) windowCallKind()   {}

// Name returns "LEAD" or "LAG".
func (l *LeadLagFunction) Name() string {
	if l.Lead {
		return "LEAD"
	}
	return "LAG"
}

// FuncDesc describes a builtin function.
type FuncDesc struct {
	Name string
	// Kind is nil for ordinary scalar functions.
	Kind WindowCallKind
	// PartitionBoundArgs requires every argument to be a constant or a
	// partition key of the call's window.
	PartitionBoundArgs bool
	Volatile           bool
	ResultType         func(args []types.TypeCode) types.TypeCode
}

// IsDeferred reports whether the function is finalized after the window
// operator.
func (d *FuncDesc) IsDeferred() bool {
	r, ok := d.Kind.(*RankingFunction)
	return ok && r.Deferred != nil
}

// FunctionCatalog resolves function names.
type FunctionCatalog interface {
	LookupFunction(name string) (*FuncDesc, bool)
}

type builtinCatalog map[string]*FuncDesc

// LookupFunction implements FunctionCatalog interface.
func (c builtinCatalog) LookupFunction(name string) (*FuncDesc, bool) {
	d, ok := c[strings.ToLower(name)]
	return d, ok
}

func fixed(tp types.TypeCode) func([]types.TypeCode) types.TypeCode {
	return func([]types.TypeCode) types.TypeCode { return tp }
}

func firstArg(args []types.TypeCode) types.TypeCode {
	if len(args) == 0 {
		return types.TypeUnspecified
	}
	return args[0]
}

func sumType(args []types.TypeCode) types.TypeCode {
	switch tp := firstArg(args); tp {
	case types.TypeInt4, types.TypeInt8:
		return types.TypeInt8
	case types.TypeFloat8:
		return types.TypeFloat8
	default:
		return types.TypeNumeric
	}
}

func avgType(args []types.TypeCode) types.TypeCode {
	if firstArg(args) == types.TypeFloat8 {
		return types.TypeFloat8
	}
	return types.TypeNumeric
}

var builtins = builtinCatalog{
	"count": {Name: "count", Kind: &OrdinaryAggregate{TransSpace: 8}, ResultType: fixed(types.TypeInt8)},
	"sum":   {Name: "sum", Kind: &OrdinaryAggregate{TransSpace: 16}, ResultType: sumType},
	"avg":   {Name: "avg", Kind: &OrdinaryAggregate{TransSpace: 24}, ResultType: avgType},
	"min":   {Name: "min", Kind: &OrdinaryAggregate{TransSpace: 8}, ResultType: firstArg},
	"max":   {Name: "max", Kind: &OrdinaryAggregate{TransSpace: 8}, ResultType: firstArg},

	"row_number": {Name: "row_number", Kind: &RankingFunction{}, ResultType: fixed(types.TypeInt8)},
	"rank":       {Name: "rank", Kind: &RankingFunction{}, ResultType: fixed(types.TypeInt8)},
	"dense_rank": {Name: "dense_rank", Kind: &RankingFunction{}, ResultType: fixed(types.TypeInt8)},
	"percent_rank": {
		Name:       "percent_rank",
		Kind:       &RankingFunction{Deferred: &DeferredFinalize{PrelimType: types.TypeInt8, FinalFunc: "percent_rank_final"}},
		ResultType: fixed(types.TypeFloat8),
	},
	"cume_dist": {
		Name:       "cume_dist",
		Kind:       &RankingFunction{Deferred: &DeferredFinalize{PrelimType: types.TypeInt8, FinalFunc: "cume_dist_final"}},
		ResultType: fixed(types.TypeFloat8),
	},
	"ntile": {
		Name:               "ntile",
		Kind:               &RankingFunction{Deferred: &DeferredFinalize{PrelimType: types.TypeBytes, FinalFunc: "ntile_final"}},
		PartitionBoundArgs: true,
		ResultType:         fixed(types.TypeInt8),
	},

	"first_value": {Name: "first_value", Kind: &ValueFunction{}, ResultType: firstArg},
	"last_value":  {Name: "last_value", Kind: &ValueFunction{}, ResultType: firstArg},
	"lead":        {Name: "lead", Kind: &LeadLagFunction{Lead: true}, ResultType: firstArg},
	"lag":         {Name: "lag", Kind: &LeadLagFunction{}, ResultType: firstArg},

	"lower":  {Name: "lower", ResultType: fixed(types.TypeText)},
	"upper":  {Name: "upper", ResultType: fixed(types.TypeText)},
	"abs":    {Name: "abs", ResultType: firstArg},
	"random": {Name: "random", Volatile: true, ResultType: fixed(types.TypeFloat8)},
}

// BuiltinCatalog returns the catalog of builtin functions.
func BuiltinCatalog() FunctionCatalog {
	return builtins
}
