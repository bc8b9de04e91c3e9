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

// Package querydesc binds YAML descriptions of window queries to the
// annotated query tree consumed by the window planner.
package querydesc

import (
	"os"
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/config"
	"github.com/pingcap/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// Description is a query over a set of tables:
//
//	tables:
//	  - name: t
//	    dist-keys: [a]
//	    columns: [{name: a, type: int4}, {name: b, type: int4}]
//	select:
//	  - col: a
//	  - window: rank
//	    over: w
//	windows:
//	  - name: w
//	    partition-by: [{col: a}]
//	    order-by: [{col: b, desc: true}]
type Description struct {
	Tables  []TableDesc  `yaml:"tables"`
	Select  []TargetDesc `yaml:"select"`
	Windows []WindowDesc `yaml:"windows"`
	// Settings override planner.window configuration items by their TOML
	// names, e.g. sequential-plans.
	Settings map[string]any `yaml:"settings"`
}

// TableDesc describes a relation of the range table.
type TableDesc struct {
	Name     string       `yaml:"name"`
	Policy   string       `yaml:"policy"`
	DistKeys []string     `yaml:"dist-keys"`
	Rows     float64      `yaml:"rows"`
	Columns  []ColumnDesc `yaml:"columns"`
}

// ColumnDesc is a column name with its type name.
type ColumnDesc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ExprDesc is an expression. Exactly one of Col, Const, Null, Func and
// Window is expected.
type ExprDesc struct {
	// Col is a column name, optionally qualified by its table.
	Col      string `yaml:"col"`
	LevelsUp int    `yaml:"levels-up"`

	Const any  `yaml:"const"`
	Null  bool `yaml:"null"`
	// Type is required for a NULL constant and for unknown functions.
	Type string `yaml:"type"`

	Func   string `yaml:"func"`
	Window string `yaml:"window"`
	// Over names the window of a window call, or gives its position.
	Over     string     `yaml:"over"`
	Args     []ExprDesc `yaml:"args"`
	Distinct bool       `yaml:"distinct"`
	Star     bool       `yaml:"star"`
	Filter   *ExprDesc  `yaml:"filter"`
}

// TargetDesc is an entry of the select list.
type TargetDesc struct {
	ExprDesc `yaml:",inline"`
	As       string `yaml:"as"`
	Junk     bool   `yaml:"junk"`
}

// SortDesc is an ORDER BY item.
type SortDesc struct {
	ExprDesc `yaml:",inline"`
	Desc     bool `yaml:"desc"`
	// NullsFirst defaults to Desc.
	NullsFirst *bool `yaml:"nulls-first"`
}

// WindowDesc is a window clause.
type WindowDesc struct {
	Name        string     `yaml:"name"`
	PartitionBy []ExprDesc `yaml:"partition-by"`
	OrderBy     []SortDesc `yaml:"order-by"`
	Frame       *FrameDesc `yaml:"frame"`
}

// FrameDesc is a frame clause. A missing End means CURRENT ROW.
type FrameDesc struct {
	Mode  string     `yaml:"mode"`
	Start BoundDesc  `yaml:"start"`
	End   *BoundDesc `yaml:"end"`
}

// BoundDesc is a frame bound: unbounded-preceding, preceding, current-row,
// following or unbounded-following. Offset is read for preceding and
// following.
type BoundDesc struct {
	Bound  string    `yaml:"bound"`
	Offset *ExprDesc `yaml:"offset"`
}

// Parse decodes a description. Unknown keys are rejected.
func Parse(data []byte) (*Description, error) {
	d := &Description{}
	if err := yaml.UnmarshalStrict(data, d); err != nil {
		return nil, errors.Annotate(err, "invalid query description")
	}
	return d, nil
}

// Load reads and decodes the description in file.
func Load(file string) (*Description, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Trace(err)
	}
	d, err := Parse(data)
	return d, errors.Annotatef(err, "file %s", file)
}

// ApplySettings overrides cfg with the description's settings.
func (d *Description) ApplySettings(cfg *config.Window) error {
	for key, val := range d.Settings {
		var err error
		switch strings.ToLower(key) {
		case "sequential-plans":
			cfg.SequentialPlans, err = cast.ToBoolE(val)
		case "share-input":
			cfg.ShareInput, err = cast.ToBoolE(val)
		case "motion-cost-per-row":
			cfg.MotionCostPerRow, err = cast.ToFloat64E(val)
		case "cpu-tuple-cost":
			cfg.CPUTupleCost, err = cast.ToFloat64E(val)
		case "num-segments":
			cfg.NumSegments, err = cast.ToIntE(val)
		default:
			return errors.Errorf("unknown setting %q", key)
		}
		if err != nil {
			return errors.Annotatef(err, "setting %s", key)
		}
	}
	return nil
}
