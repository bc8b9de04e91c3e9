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

package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/logutil"
	"github.com/pingcap/errors"
	"go.uber.org/atomic"
)

// Config contains configuration options.
type Config struct {
	Log     Log     `toml:"log" json:"log"`
	Planner Planner `toml:"planner" json:"planner"`
}

// Log is the log section of config.
type Log struct {
	// Log level.
	Level string `toml:"level" json:"level"`
	// Log format, one of json or text.
	Format string `toml:"format" json:"format"`
	// Disable automatic timestamps in output.
	DisableTimestamp bool `toml:"disable-timestamp" json:"disable-timestamp"`
	// File log config.
	File logutil.FileLogConfig `toml:"file" json:"file"`
}

// Planner is the planner section of config.
type Planner struct {
	Window Window `toml:"window" json:"window"`
}

// Window controls how queries with window functions are planned.
type Window struct {
	// SequentialPlans computes the windows of a query one after another over
	// a single input instead of joining independently computed coplans.
	SequentialPlans bool `toml:"sequential-plans" json:"sequential-plans"`
	// ShareInput materializes the common input once and reads it from every
	// coplan. When false each coplan plans its own copy.
	ShareInput bool `toml:"share-input" json:"share-input"`
	// MotionCostPerRow is the cost of moving a row between processes. Zero
	// means twice CPUTupleCost.
	MotionCostPerRow float64 `toml:"motion-cost-per-row" json:"motion-cost-per-row"`
	CPUTupleCost     float64 `toml:"cpu-tuple-cost" json:"cpu-tuple-cost"`
	// NumSegments is the number of segments data is distributed over.
	NumSegments int `toml:"num-segments" json:"num-segments"`
}

var defaultConf = Config{
	Log: Log{
		Level:  "info",
		Format: logutil.DefaultLogFormat,
		File:   logutil.NewFileLogConfig(logutil.DefaultLogMaxSize),
	},
	Planner: Planner{
		Window: Window{
			SequentialPlans: false,
			ShareInput:      true,
			CPUTupleCost:    0.01,
			NumSegments:     3,
		},
	},
}

var globalConf atomic.Pointer[Config]

func init() {
	InitializeConfig()
}

// InitializeConfig resets the global config to the default values.
func InitializeConfig() {
	StoreGlobalConfig(NewConfig())
}

// NewConfig creates a new config instance with default value.
func NewConfig() *Config {
	conf := defaultConf
	return &conf
}

// GetGlobalConfig returns the global configuration for this process.
// Callers must not modify the returned value, use UpdateGlobal instead.
func GetGlobalConfig() *Config {
	return globalConf.Load()
}

// StoreGlobalConfig stores a new config to the globalConf. It mostly uses in the test to avoid some data races.
func StoreGlobalConfig(config *Config) {
	globalConf.Store(config)
}

// UpdateGlobal updates the global config, and provide a restore function that can be used to restore to the original.
func UpdateGlobal(f func(conf *Config)) {
	g := GetGlobalConfig()
	newConf := *g
	f(&newConf)
	StoreGlobalConfig(&newConf)
}

// RestoreFunc gets a function that restore the config to the current value.
func RestoreFunc() (restore func()) {
	g := GetGlobalConfig()
	return func() {
		StoreGlobalConfig(g)
	}
}

// ErrConfigValidationFailed is an error type for config validation.
type ErrConfigValidationFailed struct {
	confFile       string
	UndecodedItems []string
}

func (e *ErrConfigValidationFailed) Error() string {
	return fmt.Sprintf("config file %s contained invalid configuration options: %s; check "+
		"the manual to make sure this option has not been deprecated and removed from your "+
		"version if the option does not appear to be a typo", e.confFile, strings.Join(
		e.UndecodedItems, ", "))
}

// Load loads config options from a toml file.
func (c *Config) Load(confFile string) error {
	metaData, err := toml.DecodeFile(confFile, c)
	if err != nil {
		return errors.Trace(err)
	}
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return &ErrConfigValidationFailed{confFile, undecodedItems}
	}
	return c.Valid()
}

// Valid checks if this config is valid.
func (c *Config) Valid() error {
	w := &c.Planner.Window
	if w.CPUTupleCost < 0 {
		return errors.Errorf("planner.window.cpu-tuple-cost should be non-negative, got %v", w.CPUTupleCost)
	}
	if w.MotionCostPerRow < 0 {
		return errors.Errorf("planner.window.motion-cost-per-row should be non-negative, got %v", w.MotionCostPerRow)
	}
	if w.NumSegments < 1 {
		return errors.Errorf("planner.window.num-segments should be positive, got %d", w.NumSegments)
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.Errorf("log.format should be json or text, got %s", c.Log.Format)
	}
	return nil
}

// ToLogConfig converts *Log to *logutil.LogConfig.
func (l *Log) ToLogConfig() *logutil.LogConfig {
	return logutil.NewLogConfig(l.Level, l.Format, l.File, l.DisableTimestamp)
}

// EffectiveMotionCostPerRow returns the motion cost with its default applied.
func (w *Window) EffectiveMotionCostPerRow() float64 {
	if w.MotionCostPerRow > 0 {
		return w.MotionCostPerRow
	}
	return 2 * w.CPUTupleCost
}
