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
	"fmt"
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
)

// DistributionPolicy tells how the rows of a table are spread over segments.
type DistributionPolicy byte

// Distribution policies.
const (
	// PolicyHashed distributes rows by the hash of the distribution keys.
	PolicyHashed DistributionPolicy = iota
	// PolicyRandom spreads rows without a usable key.
	PolicyRandom
	// PolicyReplicated keeps a full copy on every segment.
	PolicyReplicated
	// PolicyEntry keeps the table on the coordinator only.
	PolicyEntry
)

var policyNames = []string{"hashed", "random", "replicated", "entry"}

// String implements fmt.Stringer interface.
func (p DistributionPolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// ParseDistributionPolicy parses a policy name. The empty string means hashed.
func ParseDistributionPolicy(s string) (DistributionPolicy, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyHashed, true
	}
	for i, n := range policyNames {
		if n == s {
			return DistributionPolicy(i), true
		}
	}
	return PolicyHashed, false
}

// Column describes a column of a range table entry.
type Column struct {
	Name string
	Type types.TypeCode
}

// RangeTblEntry is a relation referenced by a query. Vars address it by its
// 1-based position in Query.RangeTable.
type RangeTblEntry struct {
	Name    string
	Columns []Column
	Policy  DistributionPolicy
	// DistKeys are the 1-based attnos of the hash distribution keys.
	DistKeys []int
	RowCount float64
}

// NumColumns returns the number of columns.
func (rte *RangeTblEntry) NumColumns() int {
	return len(rte.Columns)
}

// ColumnType returns the type of a 1-based column.
func (rte *RangeTblEntry) ColumnType(attNo int) types.TypeCode {
	if attNo < 1 || attNo > len(rte.Columns) {
		return types.TypeUnspecified
	}
	return rte.Columns[attNo-1].Type
}

// WindowClause is a named or inline window specification. Partition and
// order clauses refer to target entries through their sort/group refs.
type WindowClause struct {
	Name            string
	PartitionClause []*expression.SortGroupClause
	OrderClause     []*expression.SortGroupClause
	Frame           Frame
}

// String implements fmt.Stringer interface.
func (wc *WindowClause) String() string {
	var parts []string
	if len(wc.PartitionClause) > 0 {
		parts = append(parts, "partition by "+sortClausesString(wc.PartitionClause))
	}
	if len(wc.OrderClause) > 0 {
		parts = append(parts, "order by "+sortClausesString(wc.OrderClause))
	}
	if !wc.Frame.Options.IsDefault() {
		parts = append(parts, wc.Frame.String())
	}
	return strings.Join(parts, " ")
}

func sortClausesString(clauses []*expression.SortGroupClause) string {
	strs := make([]string, 0, len(clauses))
	for _, c := range clauses {
		strs = append(strs, c.String())
	}
	return strings.Join(strs, ", ")
}

// Query is an analyzed query block whose target list contains window
// calls. WindowFunc.WinRef indexes WindowClauses.
type Query struct {
	RangeTable    []*RangeTblEntry
	TargetList    []*expression.TargetEntry
	WindowClauses []*WindowClause
}

// RTE returns the range table entry for a 1-based varno, or nil.
func (q *Query) RTE(varNo int) *RangeTblEntry {
	if varNo < 1 || varNo > len(q.RangeTable) {
		return nil
	}
	return q.RangeTable[varNo-1]
}

// WindowClause returns the clause a window call refers to, or nil.
func (q *Query) WindowClause(winRef int) *WindowClause {
	if winRef < 0 || winRef >= len(q.WindowClauses) {
		return nil
	}
	return q.WindowClauses[winRef]
}

// Digest fingerprints the target list. Equal projections get equal digests.
func (q *Query) Digest() uint64 {
	var d uint64
	for _, te := range q.TargetList {
		d = d*31 + expression.Digest(te.Expr)
	}
	return d
}

// NumWindowCalls counts the window calls in the target list.
func (q *Query) NumWindowCalls() int {
	n := 0
	for _, te := range q.TargetList {
		expression.Walk(te.Expr, func(e expression.Expression) bool {
			if _, ok := e.(*expression.WindowFunc); ok {
				n++
			}
			return true
		})
	}
	return n
}

// String implements fmt.Stringer interface.
func (q *Query) String() string {
	var sb strings.Builder
	sb.WriteString("select " + expression.TargetListString(q.TargetList))
	for i, rte := range q.RangeTable {
		if i == 0 {
			sb.WriteString(" from ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(rte.Name)
	}
	for i, wc := range q.WindowClauses {
		fmt.Fprintf(&sb, " w%d as (%s)", i, wc.String())
	}
	return sb.String()
}
