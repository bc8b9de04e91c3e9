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
	"path/filepath"
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/config"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/query"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestLoadAndBind(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "ranking.yaml"))
	require.NoError(t, err)
	q, err := Bind(d, nil)
	require.NoError(t, err)

	require.Len(t, q.RangeTable, 1)
	rte := q.RangeTable[0]
	require.Equal(t, query.PolicyHashed, rte.Policy)
	require.Equal(t, []int{1}, rte.DistKeys)
	require.Equal(t, types.TypeInt8, rte.ColumnType(4))

	// b is not selected, so it is appended as a junk entry.
	require.Len(t, q.TargetList, 4)
	require.Equal(t, "$1.1", q.TargetList[0].Expr.String())
	require.Equal(t, "rank() over(w0)", q.TargetList[1].Expr.String())
	require.Equal(t, "sum($1.4) over(w1)", q.TargetList[2].Expr.String())
	require.Equal(t, "total", q.TargetList[2].ResName)
	junk := q.TargetList[3]
	require.True(t, junk.ResJunk)
	require.Equal(t, "$1.2", junk.Expr.String())

	require.Len(t, q.WindowClauses, 2)
	w := q.WindowClauses[0]
	require.Equal(t, q.TargetList[0].SortGroupRef, w.PartitionClause[0].TLESortGroupRef)
	require.Equal(t, junk.SortGroupRef, w.OrderClause[0].TLESortGroupRef)
	require.Equal(t, types.OpGT, w.OrderClause[0].SortOp)
	require.True(t, w.OrderClause[0].NullsFirst)
	require.Equal(t, types.OpEQ, w.OrderClause[0].EqOp)
	require.Equal(t, w.PartitionClause[0].TLESortGroupRef, q.WindowClauses[1].PartitionClause[0].TLESortGroupRef)
	require.True(t, q.WindowClauses[1].Frame.Options.IsDefault())

	cfg := config.NewConfig().Planner.Window
	require.NoError(t, d.ApplySettings(&cfg))
	require.True(t, cfg.SequentialPlans)
	require.Equal(t, 4, cfg.NumSegments)
}

func TestBindFrame(t *testing.T) {
	d, err := Parse([]byte(`
tables:
  - {name: t, policy: replicated, columns: [{name: a, type: int}, {name: ts, type: timestamp}]}
select:
  - {window: sum, over: "0", args: [{col: t.a}]}
windows:
  - order-by: [{col: ts}]
    frame:
      mode: rows
      start: {bound: preceding, offset: {const: 2}}
      end: {bound: following, offset: {const: 1, type: int4}}
`))
	require.NoError(t, err)
	q, err := Bind(d, expression.BuiltinCatalog())
	require.NoError(t, err)
	require.Equal(t, query.PolicyReplicated, q.RangeTable[0].Policy)
	frame := q.WindowClauses[0].Frame
	require.Equal(t, "rows between 2 preceding and 1 following", frame.String())
	require.Equal(t, types.TypeInt8, frame.StartOffset.GetType())
	require.Equal(t, types.TypeInt4, frame.EndOffset.GetType())
	require.False(t, q.WindowClauses[0].OrderClause[0].NullsFirst)
}

func TestBindExpressions(t *testing.T) {
	d, err := Parse([]byte(`
tables:
  - {name: t, dist-keys: [a], columns: [{name: a, type: int4}, {name: s, type: text}]}
select:
  - {func: random}
  - {func: lower, args: [{col: s}]}
  - {null: true, type: int8}
  - {const: 1.5}
  - {const: hello}
  - {window: count, over: w, star: true, filter: {col: a}}
windows:
  - {name: w, partition-by: [{func: abs, args: [{col: a}]}]}
`))
	require.NoError(t, err)
	q, err := Bind(d, nil)
	require.NoError(t, err)

	rnd := q.TargetList[0].Expr.(*expression.FuncExpr)
	require.True(t, rnd.Volatile)
	require.Equal(t, types.TypeFloat8, rnd.RetType)
	require.Equal(t, types.TypeText, q.TargetList[1].Expr.GetType())
	require.Equal(t, "NULL", q.TargetList[2].Expr.String())
	require.Equal(t, types.TypeFloat8, q.TargetList[3].Expr.GetType())
	require.Equal(t, `"hello"`, q.TargetList[4].Expr.String())
	wf := q.TargetList[5].Expr.(*expression.WindowFunc)
	require.True(t, wf.Star)
	require.NotNil(t, wf.Filter)
	require.Equal(t, "abs($1.1)", q.TargetList[6].Expr.String())
	require.True(t, q.TargetList[6].ResJunk)
}

func TestBindErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		msg  string
	}{
		{"no tables", `select: [{const: 1}]`, "no tables"},
		{"unknown column", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nselect: [{col: z}]", "unknown column z"},
		{"ambiguous column", "tables: [{name: t, columns: [{name: a, type: int4}]}, {name: u, columns: [{name: a, type: int4}]}]\nselect: [{col: a}]", "ambiguous"},
		{"unknown type", "tables: [{name: t, columns: [{name: a, type: blob}]}]", "unknown type name"},
		{"unknown dist key", "tables: [{name: t, dist-keys: [b], columns: [{name: a, type: int4}]}]", "distribution key"},
		{"unknown policy", "tables: [{name: t, policy: sharded, columns: [{name: a, type: int4}]}]", "distribution policy"},
		{"unknown window", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nselect: [{window: rank, over: w}]", "unknown window"},
		{"untyped function", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nselect: [{func: foo}]", "needs a result type"},
		{"bad constant", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nselect: [{const: abc, type: int8}]", "constant of type int8"},
		{"duplicate window", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nwindows: [{name: w}, {name: w}]", "defined twice"},
		{"offset missing", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nwindows: [{frame: {mode: rows, start: {bound: preceding}}}]", "needs an offset"},
		{"bad bound", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nwindows: [{frame: {start: {bound: sideways}}}]", "unknown frame bound"},
		{"empty expression", "tables: [{name: t, columns: [{name: a, type: int4}]}]\nselect: [{as: x}]", "empty expression"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, err := Parse([]byte(c.yaml))
			require.NoError(t, err)
			_, err = Bind(d, nil)
			require.ErrorContains(t, err, c.msg)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("tables: []\nselekt: []"))
	require.ErrorContains(t, err, "invalid query description")
}

func TestApplySettingsErrors(t *testing.T) {
	cfg := config.NewConfig().Planner.Window
	d := &Description{Settings: map[string]any{"no-such-setting": 1}}
	require.ErrorContains(t, d.ApplySettings(&cfg), "unknown setting")
	d = &Description{Settings: map[string]any{"share-input": "maybe"}}
	require.ErrorContains(t, d.ApplySettings(&cfg), "share-input")
}
