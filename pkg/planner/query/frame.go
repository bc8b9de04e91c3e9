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
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
)

// FrameOptions is a bit set describing a window frame clause.
type FrameOptions uint32

// Frame option bits.
const (
	// FrameNonDefault is set for any explicit frame clause.
	FrameNonDefault FrameOptions = 1 << iota
	FrameRange
	FrameRows
	FrameBetween
	FrameStartUnboundedPreceding
	FrameEndUnboundedPreceding
	FrameStartUnboundedFollowing
	FrameEndUnboundedFollowing
	FrameStartCurrentRow
	FrameEndCurrentRow
	FrameStartValuePreceding
	FrameEndValuePreceding
	FrameStartValueFollowing
	FrameEndValueFollowing
)

// FrameDefault is RANGE BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW.
const FrameDefault = FrameRange | FrameStartUnboundedPreceding | FrameEndCurrentRow

const (
	frameStartMask = FrameStartUnboundedPreceding | FrameStartUnboundedFollowing |
		FrameStartCurrentRow | FrameStartValuePreceding | FrameStartValueFollowing
	frameEndMask = FrameEndUnboundedPreceding | FrameEndUnboundedFollowing |
		FrameEndCurrentRow | FrameEndValuePreceding | FrameEndValueFollowing
)

// IsDefault reports whether no frame clause was given.
func (o FrameOptions) IsDefault() bool {
	return o&FrameNonDefault == 0
}

// Has reports whether all bits of f are set.
func (o FrameOptions) Has(f FrameOptions) bool {
	return o&f == f
}

// StartIsFollowing reports whether the start bound lies after the current row.
func (o FrameOptions) StartIsFollowing() bool {
	return o&(FrameStartValueFollowing|FrameStartUnboundedFollowing) != 0
}

// EndIsPrecedingOrCurrent reports whether the end bound lies at or before
// the current row.
func (o FrameOptions) EndIsPrecedingOrCurrent() bool {
	return o&(FrameEndValuePreceding|FrameEndUnboundedPreceding|FrameEndCurrentRow) != 0
}

// Frame is a frame clause with its offset expressions.
type Frame struct {
	Options     FrameOptions
	StartOffset expression.Expression
	EndOffset   expression.Expression
}

// Clone deep-copies the frame.
func (f Frame) Clone() Frame {
	c := f
	if f.StartOffset != nil {
		c.StartOffset = f.StartOffset.Clone()
	}
	if f.EndOffset != nil {
		c.EndOffset = f.EndOffset.Clone()
	}
	return c
}

// Equal reports whether two frames are structurally identical.
func (f Frame) Equal(o Frame) bool {
	return f.Options == o.Options &&
		expression.Compare(f.StartOffset, o.StartOffset) == 0 &&
		expression.Compare(f.EndOffset, o.EndOffset) == 0
}

func boundString(o FrameOptions, start bool, offset expression.Expression) string {
	mask := frameEndMask
	if start {
		mask = frameStartMask
	}
	switch o & mask {
	case FrameStartUnboundedPreceding, FrameEndUnboundedPreceding:
		return "unbounded preceding"
	case FrameStartUnboundedFollowing, FrameEndUnboundedFollowing:
		return "unbounded following"
	case FrameStartCurrentRow, FrameEndCurrentRow:
		return "current row"
	case FrameStartValuePreceding, FrameEndValuePreceding:
		return offsetString(offset) + " preceding"
	case FrameStartValueFollowing, FrameEndValueFollowing:
		return offsetString(offset) + " following"
	}
	return "?"
}

func offsetString(e expression.Expression) string {
	if e == nil {
		return "?"
	}
	return e.String()
}

// String implements fmt.Stringer interface.
func (f Frame) String() string {
	o := f.Options
	if o.IsDefault() {
		o = FrameDefault
	}
	var sb strings.Builder
	if o&FrameRows != 0 {
		sb.WriteString("rows ")
	} else {
		sb.WriteString("range ")
	}
	if o&FrameBetween != 0 {
		sb.WriteString("between ")
		sb.WriteString(boundString(o, true, f.StartOffset))
		sb.WriteString(" and ")
		sb.WriteString(boundString(o, false, f.EndOffset))
		return sb.String()
	}
	sb.WriteString(boundString(o, true, f.StartOffset))
	return sb.String()
}
