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
	"github.com/prometheus/client_golang/prometheus"
)

// Window planner metrics.
var (
	WindowPlanStrategyCounter *prometheus.CounterVec
	WindowPlanDuration        *prometheus.HistogramVec
	WindowSpecsPerQuery       prometheus.Histogram
	WindowCoplanCounter       *prometheus.CounterVec
)

// Window plan strategies, used as the type label.
const (
	StrategyTrivial    = "trivial"
	StrategySequential = "sequential"
	StrategyParallel   = "parallel"
)

// InitWindowPlannerMetrics initializes window planner metrics.
func InitWindowPlannerMetrics() {
	WindowPlanStrategyCounter = NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudberry",
			Subsystem: "window_planner",
			Name:      "strategy_total",
			Help:      "Counter of window plans by strategy.",
		}, []string{LblType})

	WindowPlanDuration = NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cloudberry",
			Subsystem: "window_planner",
			Name:      "plan_duration_seconds",
			Help:      "Bucketed histogram of time (s) spent planning window functions.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 20), // 10us ~ 5s
		}, []string{LblResult})

	WindowSpecsPerQuery = NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cloudberry",
			Subsystem: "window_planner",
			Name:      "specs_per_query",
			Help:      "Bucketed histogram of distinct window specifications per query after deduplication.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 ~ 128
		})

	WindowCoplanCounter = NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudberry",
			Subsystem: "window_planner",
			Name:      "coplan_total",
			Help:      "Counter of coplans built by parallel window plans.",
		}, []string{LblType})
}
