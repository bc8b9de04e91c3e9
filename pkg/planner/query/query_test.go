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

package query

import (
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestFrameString(t *testing.T) {
	two := expression.NewInt8Const(2)
	tests := []struct {
		frame Frame
		str   string
	}{
		{Frame{}, "range between unbounded preceding and current row"},
		{Frame{
			Options:     FrameNonDefault | FrameRows | FrameBetween | FrameStartValuePreceding | FrameEndValuePreceding,
			StartOffset: two,
			EndOffset:   two,
		}, "rows between 2 preceding and 2 preceding"},
		{Frame{
			Options: FrameNonDefault | FrameRows | FrameStartUnboundedPreceding,
		}, "rows unbounded preceding"},
		{Frame{
			Options:   FrameNonDefault | FrameRange | FrameBetween | FrameStartCurrentRow | FrameEndValueFollowing,
			EndOffset: two,
		}, "range between current row and 2 following"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.str, tt.frame.String())
	}
}

func TestFrameOptions(t *testing.T) {
	require.True(t, FrameOptions(0).IsDefault())
	require.False(t, (FrameNonDefault | FrameRows).IsDefault())
	require.True(t, FrameDefault.Has(FrameRange|FrameEndCurrentRow))
	require.True(t, (FrameStartValueFollowing).StartIsFollowing())
	require.False(t, (FrameStartCurrentRow).StartIsFollowing())
	require.True(t, (FrameEndCurrentRow).EndIsPrecedingOrCurrent())
	require.False(t, (FrameEndUnboundedFollowing).EndIsPrecedingOrCurrent())
}

func TestFrameEqual(t *testing.T) {
	opts := FrameNonDefault | FrameRows | FrameBetween | FrameStartValuePreceding | FrameEndValuePreceding
	f1 := Frame{Options: opts, StartOffset: expression.NewInt8Const(2), EndOffset: expression.NewInt8Const(2)}
	f2 := f1.Clone()
	require.True(t, f1.Equal(f2))
	require.NotSame(t, f1.StartOffset, f2.StartOffset)
	f2.EndOffset = expression.NewInt8Const(3)
	require.False(t, f1.Equal(f2))
	require.True(t, Frame{}.Equal(Frame{}))
}

func TestQueryAccessors(t *testing.T) {
	rte := &RangeTblEntry{
		Name:     "t",
		Columns:  []Column{{Name: "a", Type: types.TypeInt4}, {Name: "b", Type: types.TypeText}},
		DistKeys: []int{1},
	}
	part := &expression.SortGroupClause{TLESortGroupRef: 1, SortOp: types.OpLT, EqOp: types.OpEQ}
	q := &Query{
		RangeTable: []*RangeTblEntry{rte},
		TargetList: []*expression.TargetEntry{
			{Expr: expression.NewVar(1, 1, types.TypeInt4), ResNo: 1, SortGroupRef: 1},
			{Expr: &expression.WindowFunc{FuncName: "rank", RetType: types.TypeInt8}, ResNo: 2},
		},
		WindowClauses: []*WindowClause{{PartitionClause: []*expression.SortGroupClause{part}}},
	}
	require.Same(t, rte, q.RTE(1))
	require.Nil(t, q.RTE(0))
	require.Nil(t, q.RTE(2))
	require.NotNil(t, q.WindowClause(0))
	require.Nil(t, q.WindowClause(1))
	require.Nil(t, q.WindowClause(-1))
	require.Equal(t, 1, q.NumWindowCalls())
	require.Equal(t, 2, rte.NumColumns())
	require.Equal(t, types.TypeText, rte.ColumnType(2))
	require.Equal(t, types.TypeUnspecified, rte.ColumnType(3))
	require.Equal(t, "select $1.1, rank() over(w0) from t w0 as (partition by ref#1 lt)", q.String())

	other := *q
	require.Equal(t, q.Digest(), other.Digest())
	other.TargetList = q.TargetList[:1]
	require.NotEqual(t, q.Digest(), other.Digest())
}

func TestParseDistributionPolicy(t *testing.T) {
	p, ok := ParseDistributionPolicy("")
	require.True(t, ok)
	require.Equal(t, PolicyHashed, p)
	p, ok = ParseDistributionPolicy("Replicated")
	require.True(t, ok)
	require.Equal(t, PolicyReplicated, p)
	require.Equal(t, "replicated", p.String())
	_, ok = ParseDistributionPolicy("bogus")
	require.False(t, ok)
}
