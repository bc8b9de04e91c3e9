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

package core

import (
	"fmt"
	"strings"
)

// ExplainText renders the plan tree one operator per line as
// "id estRows info", children indented below their parent.
func ExplainText(p PhysicalPlan) []string {
	var rows []string
	explainNode(p, "", "", &rows)
	return rows
}

func explainNode(p PhysicalPlan, prefix, childPrefix string, rows *[]string) {
	line := fmt.Sprintf("%s%s\t%.2f\t%s", prefix, p.ExplainID(), p.StatsCount(), p.ExplainInfo())
	*rows = append(*rows, strings.TrimRight(line, "\t"))
	children := p.Children()
	if s, ok := p.(*PhysicalShareInput); ok && s.Consumer > 0 {
		children = nil
	}
	for i, c := range children {
		if i == len(children)-1 {
			explainNode(c, childPrefix+"└─", childPrefix+"  ", rows)
		} else {
			explainNode(c, childPrefix+"├─", childPrefix+"│ ", rows)
		}
	}
}
