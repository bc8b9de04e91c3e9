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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	conf := NewConfig()
	require.False(t, conf.Planner.Window.SequentialPlans)
	require.True(t, conf.Planner.Window.ShareInput)
	require.Equal(t, 0.01, conf.Planner.Window.CPUTupleCost)
	require.Equal(t, 0.02, conf.Planner.Window.EffectiveMotionCostPerRow())
	require.Equal(t, 3, conf.Planner.Window.NumSegments)
	require.NoError(t, conf.Valid())
}

func TestLoad(t *testing.T) {
	path := writeConf(t, `
[log]
level = "debug"

[planner.window]
sequential-plans = true
share-input = false
motion-cost-per-row = 0.5
`)
	conf := NewConfig()
	require.NoError(t, conf.Load(path))
	require.Equal(t, "debug", conf.Log.Level)
	require.True(t, conf.Planner.Window.SequentialPlans)
	require.False(t, conf.Planner.Window.ShareInput)
	require.Equal(t, 0.5, conf.Planner.Window.EffectiveMotionCostPerRow())
	require.Equal(t, 0.01, conf.Planner.Window.CPUTupleCost)
}

func TestLoadRejectsUnknownItems(t *testing.T) {
	path := writeConf(t, `
[planner.window]
sequential-plan = true
`)
	err := NewConfig().Load(path)
	require.Error(t, err)
	verr, ok := err.(*ErrConfigValidationFailed)
	require.True(t, ok)
	require.Equal(t, []string{"planner.window.sequential-plan"}, verr.UndecodedItems)
	require.Contains(t, err.Error(), "invalid configuration options: planner.window.sequential-plan")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for _, content := range []string{
		"[planner.window]\ncpu-tuple-cost = -1.0\n",
		"[planner.window]\nmotion-cost-per-row = -0.1\n",
		"[planner.window]\nnum-segments = 0\n",
		"[log]\nformat = \"xml\"\n",
	} {
		require.Error(t, NewConfig().Load(writeConf(t, content)), content)
	}
	require.Error(t, NewConfig().Load(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestUpdateGlobal(t *testing.T) {
	restore := RestoreFunc()
	defer restore()

	orig := GetGlobalConfig()
	UpdateGlobal(func(conf *Config) {
		conf.Planner.Window.SequentialPlans = true
	})
	require.True(t, GetGlobalConfig().Planner.Window.SequentialPlans)
	require.False(t, orig.Planner.Window.SequentialPlans)

	restore()
	require.Same(t, orig, GetGlobalConfig())
}

func TestEncode(t *testing.T) {
	conf := NewConfig()
	conf.Planner.Window.SequentialPlans = true
	s, err := conf.Encode()
	require.NoError(t, err)
	require.Contains(t, s, "sequential-plans = true")
	require.Contains(t, s, "[planner.window]")
}

func TestToLogConfig(t *testing.T) {
	conf := NewConfig()
	lc := conf.Log.ToLogConfig()
	require.Equal(t, "info", lc.Level)
	require.Equal(t, "text", lc.Format)
	require.Equal(t, 300, lc.File.MaxSize)
}
