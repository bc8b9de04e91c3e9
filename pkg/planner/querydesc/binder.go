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

package querydesc

import (
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/pingcap/errors"
	"github.com/spf13/cast"
)

type binder struct {
	catalog expression.FunctionCatalog
	q       *query.Query
	windows map[string]int
	nextRef int
}

// Bind builds the query a description stands for. Partition and order
// expressions missing from the select list are appended as junk entries.
// Window calls are not validated, that is left to the planner.
func Bind(d *Description, catalog expression.FunctionCatalog) (*query.Query, error) {
	if catalog == nil {
		catalog = expression.BuiltinCatalog()
	}
	b := &binder{
		catalog: catalog,
		q:       &query.Query{},
		windows: make(map[string]int, len(d.Windows)),
		nextRef: 1,
	}
	for i := range d.Tables {
		rte, err := bindTable(&d.Tables[i])
		if err != nil {
			return nil, err
		}
		b.q.RangeTable = append(b.q.RangeTable, rte)
	}
	if len(b.q.RangeTable) == 0 {
		return nil, errors.New("query description has no tables")
	}
	for i, w := range d.Windows {
		if w.Name == "" {
			continue
		}
		if _, ok := b.windows[w.Name]; ok {
			return nil, errors.Errorf("window %s is defined twice", w.Name)
		}
		b.windows[w.Name] = i
	}

	for i := range d.Select {
		td := &d.Select[i]
		expr, err := b.bindExpr(&td.ExprDesc)
		if err != nil {
			return nil, errors.Annotatef(err, "select item %d", i+1)
		}
		name := td.As
		if name == "" {
			name = defaultName(&td.ExprDesc)
		}
		b.addTarget(expr, name, td.Junk)
	}
	for i := range d.Windows {
		wc, err := b.bindWindow(&d.Windows[i])
		if err != nil {
			return nil, errors.Annotatef(err, "window %d", i)
		}
		b.q.WindowClauses = append(b.q.WindowClauses, wc)
	}
	return b.q, nil
}

func bindTable(td *TableDesc) (*query.RangeTblEntry, error) {
	policy, ok := query.ParseDistributionPolicy(td.Policy)
	if !ok {
		return nil, errors.Errorf("table %s: unknown distribution policy %q", td.Name, td.Policy)
	}
	rte := &query.RangeTblEntry{Name: td.Name, Policy: policy, RowCount: td.Rows}
	for _, c := range td.Columns {
		tp, err := types.ParseTypeCode(c.Type)
		if err != nil {
			return nil, errors.Annotatef(err, "table %s column %s", td.Name, c.Name)
		}
		rte.Columns = append(rte.Columns, query.Column{Name: c.Name, Type: tp})
	}
	for _, key := range td.DistKeys {
		attNo := columnIndex(rte, key)
		if attNo == 0 {
			return nil, errors.Errorf("table %s: unknown distribution key %s", td.Name, key)
		}
		rte.DistKeys = append(rte.DistKeys, attNo)
	}
	if policy == query.PolicyHashed && len(rte.DistKeys) == 0 {
		rte.Policy = query.PolicyRandom
	}
	return rte, nil
}

func columnIndex(rte *query.RangeTblEntry, name string) int {
	for i, c := range rte.Columns {
		if strings.EqualFold(c.Name, name) {
			return i + 1
		}
	}
	return 0
}

func (b *binder) addTarget(expr expression.Expression, name string, junk bool) *expression.TargetEntry {
	te := &expression.TargetEntry{
		Expr:    expr,
		ResNo:   len(b.q.TargetList) + 1,
		ResName: name,
		ResJunk: junk,
	}
	b.q.TargetList = append(b.q.TargetList, te)
	return te
}

func (b *binder) bindExpr(ed *ExprDesc) (expression.Expression, error) {
	switch {
	case ed.Col != "":
		return b.bindColumn(ed)
	case ed.Null:
		tp, err := types.ParseTypeCode(ed.Type)
		if err != nil {
			return nil, errors.Annotate(err, "NULL constant")
		}
		return expression.NewNullConst(tp), nil
	case ed.Const != nil:
		return bindConst(ed.Const, ed.Type)
	case ed.Func != "":
		return b.bindFunc(ed)
	case ed.Window != "":
		return b.bindWindowFunc(ed)
	}
	return nil, errors.New("empty expression")
}

func (b *binder) bindColumn(ed *ExprDesc) (expression.Expression, error) {
	table, col := "", ed.Col
	if i := strings.LastIndexByte(ed.Col, '.'); i >= 0 {
		table, col = ed.Col[:i], ed.Col[i+1:]
	}
	var found *expression.Var
	for i, rte := range b.q.RangeTable {
		if table != "" && !strings.EqualFold(rte.Name, table) {
			continue
		}
		attNo := columnIndex(rte, col)
		if attNo == 0 {
			continue
		}
		if found != nil {
			return nil, errors.Errorf("column %s is ambiguous", ed.Col)
		}
		found = expression.NewVar(i+1, attNo, rte.ColumnType(attNo))
	}
	if found == nil {
		return nil, errors.Errorf("unknown column %s", ed.Col)
	}
	found.LevelsUp = ed.LevelsUp
	return found, nil
}

// bindConst converts a YAML scalar to a constant. Without a type name the
// type follows the decoded value.
func bindConst(val any, typeName string) (*expression.Constant, error) {
	var tp types.TypeCode
	if typeName != "" {
		var err error
		if tp, err = types.ParseTypeCode(typeName); err != nil {
			return nil, err
		}
	} else {
		switch val.(type) {
		case int, int64, uint64:
			tp = types.TypeInt8
		case float64:
			tp = types.TypeFloat8
		case bool:
			tp = types.TypeBool
		default:
			tp = types.TypeText
		}
	}
	c := &expression.Constant{RetType: tp}
	var err error
	switch tp {
	case types.TypeInt4, types.TypeInt8:
		c.Value, err = cast.ToInt64E(val)
	case types.TypeFloat8, types.TypeNumeric:
		c.Value, err = cast.ToFloat64E(val)
	case types.TypeBool:
		c.Value, err = cast.ToBoolE(val)
	default:
		c.Value, err = cast.ToStringE(val)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "constant of type %s", tp)
	}
	return c, nil
}

func (b *binder) bindArgs(args []ExprDesc) ([]expression.Expression, []types.TypeCode, error) {
	exprs := make([]expression.Expression, 0, len(args))
	argTypes := make([]types.TypeCode, 0, len(args))
	for i := range args {
		e, err := b.bindExpr(&args[i])
		if err != nil {
			return nil, nil, err
		}
		exprs = append(exprs, e)
		argTypes = append(argTypes, e.GetType())
	}
	return exprs, argTypes, nil
}

func (b *binder) bindFunc(ed *ExprDesc) (expression.Expression, error) {
	args, argTypes, err := b.bindArgs(ed.Args)
	if err != nil {
		return nil, err
	}
	f := expression.NewFuncExpr(ed.Func, types.TypeUnspecified, args...)
	if desc, ok := b.catalog.LookupFunction(ed.Func); ok {
		f.Volatile = desc.Volatile
		if desc.ResultType != nil {
			f.RetType = desc.ResultType(argTypes)
		}
	}
	if ed.Type != "" {
		if f.RetType, err = types.ParseTypeCode(ed.Type); err != nil {
			return nil, err
		}
	}
	if f.RetType == types.TypeUnspecified {
		return nil, errors.Errorf("function %s needs a result type", ed.Func)
	}
	return f, nil
}

func (b *binder) bindWindowFunc(ed *ExprDesc) (expression.Expression, error) {
	winRef, err := b.windowRef(ed.Over)
	if err != nil {
		return nil, err
	}
	args, _, err := b.bindArgs(ed.Args)
	if err != nil {
		return nil, err
	}
	wf := &expression.WindowFunc{
		FuncName: ed.Window,
		Args:     args,
		WinRef:   winRef,
		Distinct: ed.Distinct,
		Star:     ed.Star,
	}
	if ed.Filter != nil {
		if wf.Filter, err = b.bindExpr(ed.Filter); err != nil {
			return nil, errors.Annotate(err, "filter")
		}
	}
	if ed.Type != "" {
		if wf.RetType, err = types.ParseTypeCode(ed.Type); err != nil {
			return nil, err
		}
	}
	return wf, nil
}

// windowRef resolves a window by name, falling back to its position.
func (b *binder) windowRef(over string) (int, error) {
	if idx, ok := b.windows[over]; ok {
		return idx, nil
	}
	idx, err := cast.ToIntE(over)
	if err != nil {
		return 0, errors.Errorf("unknown window %q", over)
	}
	return idx, nil
}

func (b *binder) bindWindow(wd *WindowDesc) (*query.WindowClause, error) {
	wc := &query.WindowClause{Name: wd.Name}
	for i := range wd.PartitionBy {
		sc, err := b.sortClause(&wd.PartitionBy[i], false, nil)
		if err != nil {
			return nil, errors.Annotate(err, "partition by")
		}
		wc.PartitionClause = append(wc.PartitionClause, sc)
	}
	for i := range wd.OrderBy {
		sd := &wd.OrderBy[i]
		sc, err := b.sortClause(&sd.ExprDesc, sd.Desc, sd.NullsFirst)
		if err != nil {
			return nil, errors.Annotate(err, "order by")
		}
		wc.OrderClause = append(wc.OrderClause, sc)
	}
	if wd.Frame != nil {
		frame, err := b.bindFrame(wd.Frame)
		if err != nil {
			return nil, err
		}
		wc.Frame = frame
	}
	return wc, nil
}

// sortClause finds or adds the target entry computing ed and returns a
// clause on its sort/group ref.
func (b *binder) sortClause(ed *ExprDesc, desc bool, nullsFirst *bool) (*expression.SortGroupClause, error) {
	expr, err := b.bindExpr(ed)
	if err != nil {
		return nil, err
	}
	te := expression.TargetListMember(b.q.TargetList, expr)
	if te == nil {
		te = b.addTarget(expr, defaultName(ed), true)
	}
	if te.SortGroupRef == 0 {
		te.SortGroupRef = b.nextRef
		b.nextRef++
	}
	sc := &expression.SortGroupClause{TLESortGroupRef: te.SortGroupRef, SortOp: types.OpLT, NullsFirst: desc}
	if desc {
		sc.SortOp = types.OpGT
	}
	if nullsFirst != nil {
		sc.NullsFirst = *nullsFirst
	}
	if op, ok := types.EqualityOpForOrderingOp(expr.GetType(), sc.SortOp); ok {
		sc.EqOp = op
	}
	return sc, nil
}

var boundOptions = map[string][2]query.FrameOptions{
	"unbounded-preceding": {query.FrameStartUnboundedPreceding, query.FrameEndUnboundedPreceding},
	"preceding":           {query.FrameStartValuePreceding, query.FrameEndValuePreceding},
	"current-row":         {query.FrameStartCurrentRow, query.FrameEndCurrentRow},
	"following":           {query.FrameStartValueFollowing, query.FrameEndValueFollowing},
	"unbounded-following": {query.FrameStartUnboundedFollowing, query.FrameEndUnboundedFollowing},
}

func (b *binder) bindFrame(fd *FrameDesc) (query.Frame, error) {
	frame := query.Frame{Options: query.FrameNonDefault}
	switch strings.ToLower(fd.Mode) {
	case "rows":
		frame.Options |= query.FrameRows
	case "range", "":
		frame.Options |= query.FrameRange
	default:
		return query.Frame{}, errors.Errorf("unknown frame mode %q", fd.Mode)
	}
	start, startOffset, err := b.bindBound(&fd.Start, 0)
	if err != nil {
		return query.Frame{}, errors.Annotate(err, "frame start")
	}
	frame.Options |= start
	frame.StartOffset = startOffset
	if fd.End == nil {
		frame.Options |= query.FrameEndCurrentRow
		return frame, nil
	}
	end, endOffset, err := b.bindBound(fd.End, 1)
	if err != nil {
		return query.Frame{}, errors.Annotate(err, "frame end")
	}
	frame.Options |= query.FrameBetween | end
	frame.EndOffset = endOffset
	return frame, nil
}

func (b *binder) bindBound(bd *BoundDesc, side int) (query.FrameOptions, expression.Expression, error) {
	opts, ok := boundOptions[strings.ToLower(bd.Bound)]
	if !ok {
		return 0, nil, errors.Errorf("unknown frame bound %q", bd.Bound)
	}
	lower := strings.ToLower(bd.Bound)
	if lower != "preceding" && lower != "following" {
		return opts[side], nil, nil
	}
	if bd.Offset == nil {
		return 0, nil, errors.Errorf("%s bound needs an offset", lower)
	}
	offset, err := b.bindExpr(bd.Offset)
	if err != nil {
		return 0, nil, err
	}
	return opts[side], offset, nil
}

func defaultName(ed *ExprDesc) string {
	switch {
	case ed.Col != "":
		if i := strings.LastIndexByte(ed.Col, '.'); i >= 0 {
			return ed.Col[i+1:]
		}
		return ed.Col
	case ed.Func != "":
		return ed.Func
	case ed.Window != "":
		return ed.Window
	}
	return "?column?"
}
