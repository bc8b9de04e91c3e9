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

package metrics

import (
	"testing"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/dbterror/plannererrors"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// Make sure it doesn't panic.
	WindowPlanStrategyCounter.WithLabelValues(StrategyTrivial).Inc()
	WindowPlanDuration.WithLabelValues(RetLabel(nil)).Observe(0.001)
	WindowSpecsPerQuery.Observe(2)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)
	require.Error(t, reg.Register(WindowCoplanCounter))
}

func TestStrategyCounter(t *testing.T) {
	before := testutil.ToFloat64(WindowPlanStrategyCounter.WithLabelValues(StrategyParallel))
	WindowPlanStrategyCounter.WithLabelValues(StrategyParallel).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(WindowPlanStrategyCounter.WithLabelValues(StrategyParallel)))
}

func TestConstLabels(t *testing.T) {
	SetConstLabels("cluster", "c1")
	defer func() {
		SetConstLabels()
		InitMetrics()
	}()
	InitMetrics()
	WindowCoplanCounter.WithLabelValues("window").Inc()
	require.Equal(t, 1, testutil.CollectAndCount(WindowCoplanCounter))
	require.Panics(t, func() { SetConstLabels("odd") })
}

func TestRetLabel(t *testing.T) {
	require.Equal(t, opSucc, RetLabel(nil))
	require.Equal(t, opFailed, RetLabel(errors.New("test error")))
}

func TestErrorToLabel(t *testing.T) {
	require.Equal(t, opSucc, ErrorToLabel(nil))
	require.Equal(t, "unknown", ErrorToLabel(errors.New("test")))
	err := errors.Trace(plannererrors.ErrLeadLagOffsetNegative.GenWithStackByArgs("LAG"))
	require.Equal(t, "planner:8256", ErrorToLabel(err))
}
