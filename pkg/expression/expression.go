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
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
)

// Expression is a node of a scalar expression tree. Expressions are treated
// as immutable once built: rewrites go through Mutate, which copies the
// changed spine and shares the rest.
type Expression interface {
	fmt.Stringer
	// GetType returns the result type of the expression.
	GetType() types.TypeCode
	// Clone deep-copies the expression.
	Clone() Expression
	// Equal reports structural equality.
	Equal(e Expression) bool
}

// Var references a column of a range table entry. VarNo and AttNo are both
// 1-based. LevelsUp is non-zero for references to an enclosing query.
type Var struct {
	VarNo    int
	AttNo    int
	LevelsUp int
	RetType  types.TypeCode
}

// NewVar creates a Var of the current query level.
func NewVar(varNo, attNo int, tp types.TypeCode) *Var {
	return &Var{VarNo: varNo, AttNo: attNo, RetType: tp}
}

// GetType implements Expression interface.
func (v *Var) GetType() types.TypeCode { return v.RetType }

// Clone implements Expression interface.
func (v *Var) Clone() Expression {
	c := *v
	return &c
}

// Equal implements Expression interface.
func (v *Var) Equal(e Expression) bool {
	o, ok := e.(*Var)
	return ok && *v == *o
}

// String implements fmt.Stringer interface.
func (v *Var) String() string {
	if v.LevelsUp > 0 {
		return fmt.Sprintf("$%d.%d^%d", v.VarNo, v.AttNo, v.LevelsUp)
	}
	return fmt.Sprintf("$%d.%d", v.VarNo, v.AttNo)
}

// Constant is a literal. Value holds an int64, float64, string or bool.
type Constant struct {
	Value   any
	IsNull  bool
	RetType types.TypeCode
}

// NewInt8Const creates an int8 constant.
func NewInt8Const(v int64) *Constant {
	return &Constant{Value: v, RetType: types.TypeInt8}
}

// NewNullConst creates a NULL constant of the given type.
func NewNullConst(tp types.TypeCode) *Constant {
	return &Constant{IsNull: true, RetType: tp}
}

// GetType implements Expression interface.
func (c *Constant) GetType() types.TypeCode { return c.RetType }

// Clone implements Expression interface.
func (c *Constant) Clone() Expression {
	n := *c
	return &n
}

// Equal implements Expression interface.
func (c *Constant) Equal(e Expression) bool {
	o, ok := e.(*Constant)
	if !ok || c.RetType != o.RetType || c.IsNull != o.IsNull {
		return false
	}
	return c.IsNull || c.Value == o.Value
}

// Int64 returns the value as int64 if it is an integer constant.
func (c *Constant) Int64() (int64, bool) {
	if c.IsNull {
		return 0, false
	}
	switch v := c.Value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}

// String implements fmt.Stringer interface.
func (c *Constant) String() string {
	if c.IsNull {
		return "NULL"
	}
	switch v := c.Value.(type) {
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FuncExpr is a call of an ordinary scalar function or operator.
type FuncExpr struct {
	FuncName string
	Args     []Expression
	RetType  types.TypeCode
	Volatile bool
}

// NewFuncExpr creates a scalar function call.
func NewFuncExpr(name string, tp types.TypeCode, args ...Expression) *FuncExpr {
	return &FuncExpr{FuncName: name, Args: args, RetType: tp}
}

// GetType implements Expression interface.
func (f *FuncExpr) GetType() types.TypeCode { return f.RetType }

// Clone implements Expression interface.
func (f *FuncExpr) Clone() Expression {
	c := *f
	c.Args = cloneExprs(f.Args)
	return &c
}

// Equal implements Expression interface.
func (f *FuncExpr) Equal(e Expression) bool {
	o, ok := e.(*FuncExpr)
	return ok && f.FuncName == o.FuncName && f.RetType == o.RetType &&
		f.Volatile == o.Volatile && exprsEqual(f.Args, o.Args)
}

// String implements fmt.Stringer interface.
func (f *FuncExpr) String() string {
	return f.FuncName + "(" + exprsString(f.Args) + ")"
}

// WinStage tells how far a window function is evaluated by the window
// operator that computes it.
type WinStage byte

// Window function stages.
const (
	// WinStageImmediate evaluates the final value in the window operator.
	WinStageImmediate WinStage = iota
	// WinStagePreliminary evaluates a partial value that is finalized later
	// with a partition row count.
	WinStagePreliminary
	// WinStageRowKey marks the row number used as a synthetic row key.
	WinStageRowKey
)

// WindowFunc is a window function call. WinRef indexes the query's window
// clause list.
type WindowFunc struct {
	FuncName string
	Args     []Expression
	WinRef   int
	Distinct bool
	Star     bool
	Filter   Expression
	RetType  types.TypeCode
	Stage    WinStage
}

// GetType implements Expression interface.
func (w *WindowFunc) GetType() types.TypeCode { return w.RetType }

// Clone implements Expression interface.
func (w *WindowFunc) Clone() Expression {
	c := *w
	c.Args = cloneExprs(w.Args)
	if w.Filter != nil {
		c.Filter = w.Filter.Clone()
	}
	return &c
}

// Equal implements Expression interface.
func (w *WindowFunc) Equal(e Expression) bool {
	o, ok := e.(*WindowFunc)
	return ok && w.FuncName == o.FuncName && w.WinRef == o.WinRef &&
		w.Distinct == o.Distinct && w.Star == o.Star && w.RetType == o.RetType &&
		w.Stage == o.Stage && exprsEqual(w.Args, o.Args) && exprEqual(w.Filter, o.Filter)
}

// String implements fmt.Stringer interface.
func (w *WindowFunc) String() string {
	var sb strings.Builder
	sb.WriteString(w.FuncName)
	switch w.Stage {
	case WinStagePreliminary:
		sb.WriteString("[prelim]")
	case WinStageRowKey:
		sb.WriteString("[rowkey]")
	}
	sb.WriteString(callArgsString(w.Args, w.Distinct, w.Star))
	if w.Filter != nil {
		sb.WriteString(" filter(" + w.Filter.String() + ")")
	}
	fmt.Fprintf(&sb, " over(w%d)", w.WinRef)
	return sb.String()
}

// Aggref is an ordinary aggregate call.
type Aggref struct {
	FuncName string
	Args     []Expression
	Distinct bool
	Star     bool
	Filter   Expression
	RetType  types.TypeCode
}

// GetType implements Expression interface.
func (a *Aggref) GetType() types.TypeCode { return a.RetType }

// Clone implements Expression interface.
func (a *Aggref) Clone() Expression {
	c := *a
	c.Args = cloneExprs(a.Args)
	if a.Filter != nil {
		c.Filter = a.Filter.Clone()
	}
	return &c
}

// Equal implements Expression interface.
func (a *Aggref) Equal(e Expression) bool {
	o, ok := e.(*Aggref)
	return ok && a.FuncName == o.FuncName && a.Distinct == o.Distinct && a.Star == o.Star &&
		a.RetType == o.RetType && exprsEqual(a.Args, o.Args) && exprEqual(a.Filter, o.Filter)
}

// String implements fmt.Stringer interface.
func (a *Aggref) String() string {
	s := a.FuncName + callArgsString(a.Args, a.Distinct, a.Star)
	if a.Filter != nil {
		s += " filter(" + a.Filter.String() + ")"
	}
	return s
}

// NewCountStar creates count(*).
func NewCountStar() *Aggref {
	return &Aggref{FuncName: "count", Star: true, RetType: types.TypeInt8}
}

// AggrefFromWindowFunc turns a window call of an aggregate into the same
// aggregate evaluated by an ordinary aggregation operator.
func AggrefFromWindowFunc(w *WindowFunc) *Aggref {
	a := &Aggref{
		FuncName: w.FuncName,
		Args:     cloneExprs(w.Args),
		Distinct: w.Distinct,
		Star:     w.Star,
		RetType:  w.RetType,
	}
	if w.Filter != nil {
		a.Filter = w.Filter.Clone()
	}
	return a
}

func callArgsString(args []Expression, distinct, star bool) string {
	if star {
		return "(*)"
	}
	if distinct {
		return "(distinct " + exprsString(args) + ")"
	}
	return "(" + exprsString(args) + ")"
}

func cloneExprs(exprs []Expression) []Expression {
	if exprs == nil {
		return nil
	}
	res := make([]Expression, len(exprs))
	for i, e := range exprs {
		res[i] = e.Clone()
	}
	return res
}

func exprEqual(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func exprsEqual(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !exprEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func exprsString(exprs []Expression) string {
	strs := make([]string, 0, len(exprs))
	for _, e := range exprs {
		strs = append(strs, e.String())
	}
	return strings.Join(strs, ", ")
}
