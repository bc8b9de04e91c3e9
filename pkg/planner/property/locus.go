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

package property

import (
	"fmt"
	"slices"
	"strings"
)

// LocusType describes where the rows of a plan are produced.
type LocusType byte

// Locus types.
const (
	// LocusEntry is the coordinator process.
	LocusEntry LocusType = iota
	// LocusSingleQE is a single segment process.
	LocusSingleQE
	// LocusGeneral can be evaluated anywhere with the same result.
	LocusGeneral
	// LocusReplicated has a full copy of the rows on every segment.
	LocusReplicated
	// LocusHashed distributes rows by the hash of HashAttrs.
	LocusHashed
	// LocusStrewn spreads rows over segments with no known key.
	LocusStrewn
)

var locusNames = []string{"entry", "single", "general", "replicated", "hashed", "strewn"}

// String implements fmt.Stringer interface.
func (t LocusType) String() string {
	if int(t) < len(locusNames) {
		return locusNames[t]
	}
	return "unknown"
}

// Locus is the distribution of a plan's output rows.
type Locus struct {
	Type LocusType
	// HashAttrs are 1-based output columns, set for LocusHashed.
	HashAttrs   []int
	NumSegments int
}

// NewHashedLocus creates a hashed locus.
func NewHashedLocus(numSegments int, attrs ...int) Locus {
	return Locus{Type: LocusHashed, HashAttrs: attrs, NumSegments: numSegments}
}

// NewSingleLocus creates a locus on one segment process.
func NewSingleLocus() Locus {
	return Locus{Type: LocusSingleQE, NumSegments: 1}
}

// IsPartitioned reports whether rows are split over several processes.
func (l Locus) IsPartitioned() bool {
	return l.Type == LocusHashed || l.Type == LocusStrewn
}

// IsSingle reports whether all rows are in one process.
func (l Locus) IsSingle() bool {
	return l.Type == LocusEntry || l.Type == LocusSingleQE || l.Type == LocusGeneral
}

// CollocatedOn reports whether rows with equal values in attrs are
// guaranteed to be in the same process.
func (l Locus) CollocatedOn(attrs []int) bool {
	switch l.Type {
	case LocusEntry, LocusSingleQE, LocusGeneral, LocusReplicated:
		return true
	case LocusHashed:
		if len(l.HashAttrs) == 0 {
			return false
		}
		for _, a := range l.HashAttrs {
			if !slices.Contains(attrs, a) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone copies the locus.
func (l Locus) Clone() Locus {
	c := l
	c.HashAttrs = slices.Clone(l.HashAttrs)
	return c
}

// String implements fmt.Stringer interface.
func (l Locus) String() string {
	if l.Type != LocusHashed {
		return l.Type.String()
	}
	strs := make([]string, 0, len(l.HashAttrs))
	for _, a := range l.HashAttrs {
		strs = append(strs, fmt.Sprintf("#%d", a))
	}
	return "hashed(" + strings.Join(strs, ", ") + ")"
}
