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

package intset

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// FastIntSet is an ordered set of non-negative integers backed by a bitset.
// The zero value is an empty set ready to use.
type FastIntSet struct {
	bs *bitset.BitSet
}

// NewFastIntSet builds a FastIntSet with the given elements.
func NewFastIntSet(vals ...int) FastIntSet {
	var s FastIntSet
	for _, v := range vals {
		s.Insert(v)
	}
	return s
}

// Insert adds i to the set.
func (s *FastIntSet) Insert(i int) {
	if i < 0 {
		panic(fmt.Sprintf("negative element %d inserted into FastIntSet", i))
	}
	if s.bs == nil {
		s.bs = bitset.New(uint(i) + 1)
	}
	s.bs.Set(uint(i))
}

// Remove deletes i from the set.
func (s *FastIntSet) Remove(i int) {
	if s.bs == nil || i < 0 {
		return
	}
	s.bs.Clear(uint(i))
}

// Has returns true if i is in the set.
func (s FastIntSet) Has(i int) bool {
	if s.bs == nil || i < 0 {
		return false
	}
	return s.bs.Test(uint(i))
}

// Len returns the number of elements.
func (s FastIntSet) Len() int {
	if s.bs == nil {
		return 0
	}
	return int(s.bs.Count())
}

// IsEmpty returns true if the set has no elements.
func (s FastIntSet) IsEmpty() bool {
	return s.bs == nil || s.bs.None()
}

// Next returns the first element that is greater than or equal to i.
func (s FastIntSet) Next(i int) (int, bool) {
	if s.bs == nil {
		return 0, false
	}
	if i < 0 {
		i = 0
	}
	n, ok := s.bs.NextSet(uint(i))
	return int(n), ok
}

// ForEach calls f for each element in increasing order.
func (s FastIntSet) ForEach(f func(i int)) {
	for i, ok := s.Next(0); ok; i, ok = s.Next(i + 1) {
		f(i)
	}
}

// Ordered returns the elements in increasing order.
func (s FastIntSet) Ordered() []int {
	if s.IsEmpty() {
		return nil
	}
	res := make([]int, 0, s.Len())
	s.ForEach(func(i int) {
		res = append(res, i)
	})
	return res
}

// Copy returns a copy of s which can be modified independently.
func (s FastIntSet) Copy() FastIntSet {
	if s.bs == nil {
		return FastIntSet{}
	}
	return FastIntSet{bs: s.bs.Clone()}
}

// UnionWith adds all the elements from rhs to this set.
func (s *FastIntSet) UnionWith(rhs FastIntSet) {
	if rhs.bs == nil {
		return
	}
	if s.bs == nil {
		s.bs = rhs.bs.Clone()
		return
	}
	s.bs.InPlaceUnion(rhs.bs)
}

// Union returns the union of s and rhs as a new set.
func (s FastIntSet) Union(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.UnionWith(rhs)
	return r
}

// Equals returns true if the two sets are identical.
func (s FastIntSet) Equals(rhs FastIntSet) bool {
	if s.IsEmpty() || rhs.IsEmpty() {
		return s.IsEmpty() == rhs.IsEmpty()
	}
	return s.bs.SymmetricDifferenceCardinality(rhs.bs) == 0
}

// SubsetOf returns true if s is a subset of rhs.
func (s FastIntSet) SubsetOf(rhs FastIntSet) bool {
	if s.IsEmpty() {
		return true
	}
	if rhs.bs == nil {
		return false
	}
	return s.bs.Difference(rhs.bs).None()
}

// Compare orders two sets as if they were unsigned integers with one bit per
// element: the set holding the highest differing element is the larger one.
// The empty set sorts first.
func (s FastIntSet) Compare(rhs FastIntSet) int {
	a, b := s.Ordered(), rhs.Ordered()
	i, j := len(a)-1, len(b)-1
	for ; i >= 0 && j >= 0; i, j = i-1, j-1 {
		switch {
		case a[i] > b[j]:
			return 1
		case a[i] < b[j]:
			return -1
		}
	}
	switch {
	case i >= 0:
		return 1
	case j >= 0:
		return -1
	}
	return 0
}

// String returns a list representation of elements, e.g. "(1,3,5)".
func (s FastIntSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	first := true
	s.ForEach(func(i int) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%d", i)
	})
	buf.WriteByte(')')
	return buf.String()
}
