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

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/types"
)

// SortItem is one key of an ordering. ResNo is the 1-based output column of
// the plan the ordering belongs to.
type SortItem struct {
	ResNo      int
	SortOp     string
	NullsFirst bool
}

// String implements fmt.Stringer interface.
func (s SortItem) String() string {
	str := fmt.Sprintf("#%d", s.ResNo)
	if s.SortOp == types.OpGT {
		str += ":desc"
	}
	if s.NullsFirst {
		str += ":nulls_first"
	}
	return str
}

// PathKeys is the ordering of a plan's output.
type PathKeys []SortItem

// Contains reports whether an output ordered by pk is also ordered by req,
// that is whether req is a prefix of pk.
func (pk PathKeys) Contains(req PathKeys) bool {
	if len(req) > len(pk) {
		return false
	}
	for i := range req {
		if pk[i] != req[i] {
			return false
		}
	}
	return true
}

// Clone copies the keys.
func (pk PathKeys) Clone() PathKeys {
	return slices.Clone(pk)
}

// String implements fmt.Stringer interface.
func (pk PathKeys) String() string {
	strs := make([]string, 0, len(pk))
	for _, item := range pk {
		strs = append(strs, item.String())
	}
	return "[" + strings.Join(strs, ", ") + "]"
}
