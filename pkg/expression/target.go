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
	"strings"
)

// TargetEntry is one item of a target list. ResNo is 1-based and equals the
// entry's position in its list. SortGroupRef is non-zero when a sort or group
// clause refers to the entry.
type TargetEntry struct {
	Expr         Expression
	ResNo        int
	ResName      string
	SortGroupRef int
	ResJunk      bool
}

// Clone deep-copies the target entry.
func (te *TargetEntry) Clone() *TargetEntry {
	c := *te
	c.Expr = te.Expr.Clone()
	return &c
}

// String implements fmt.Stringer interface.
func (te *TargetEntry) String() string {
	var sb strings.Builder
	sb.WriteString(te.Expr.String())
	if te.ResName != "" {
		sb.WriteString(" as " + te.ResName)
	}
	if te.SortGroupRef > 0 {
		fmt.Fprintf(&sb, " ref#%d", te.SortGroupRef)
	}
	return sb.String()
}

// CloneTargetList deep-copies a target list.
func CloneTargetList(tlist []*TargetEntry) []*TargetEntry {
	res := make([]*TargetEntry, 0, len(tlist))
	for _, te := range tlist {
		res = append(res, te.Clone())
	}
	return res
}

// TargetListString formats the expressions of a target list.
func TargetListString(tlist []*TargetEntry) string {
	strs := make([]string, 0, len(tlist))
	for _, te := range tlist {
		strs = append(strs, te.Expr.String())
	}
	return strings.Join(strs, ", ")
}

// GetTLEByResNo returns the entry with the given resno, or nil.
func GetTLEByResNo(tlist []*TargetEntry, resNo int) *TargetEntry {
	if resNo >= 1 && resNo <= len(tlist) && tlist[resNo-1].ResNo == resNo {
		return tlist[resNo-1]
	}
	for _, te := range tlist {
		if te.ResNo == resNo {
			return te
		}
	}
	return nil
}

// GetTLEBySortGroupRef returns the entry marked with the given sort/group
// reference, or nil.
func GetTLEBySortGroupRef(tlist []*TargetEntry, ref int) *TargetEntry {
	if ref == 0 {
		return nil
	}
	for _, te := range tlist {
		if te.SortGroupRef == ref {
			return te
		}
	}
	return nil
}

// SortGroupClause is an item of a PARTITION BY, ORDER BY or GROUP BY list.
// TLESortGroupRef matches TargetEntry.SortGroupRef.
type SortGroupClause struct {
	TLESortGroupRef int
	SortOp          string
	EqOp            string
	NullsFirst      bool
}

// Equal reports whether two clauses are identical.
func (sc *SortGroupClause) Equal(o *SortGroupClause) bool {
	return *sc == *o
}

// String implements fmt.Stringer interface.
func (sc *SortGroupClause) String() string {
	s := fmt.Sprintf("ref#%d %s", sc.TLESortGroupRef, sc.SortOp)
	if sc.NullsFirst {
		s += " nulls first"
	}
	return s
}

// CompareSortClauses orders two lists of sort clauses element by element on
// (ref, operator, nulls first), then by length.
func CompareSortClauses(a, b []*SortGroupClause) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		x, y := a[i], b[i]
		switch {
		case x.TLESortGroupRef < y.TLESortGroupRef:
			return -1
		case x.TLESortGroupRef > y.TLESortGroupRef:
			return 1
		case x.SortOp < y.SortOp:
			return -1
		case x.SortOp > y.SortOp:
			return 1
		case x.NullsFirst && !y.NullsFirst:
			return -1
		case !x.NullsFirst && y.NullsFirst:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// SortClausesEqual reports whether two lists are identical.
func SortClausesEqual(a, b []*SortGroupClause) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IsSortPrefixOf reports whether a is a list prefix of b.
func IsSortPrefixOf(a, b []*SortGroupClause) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
