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
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics labels.
const (
	LblType   = "type"
	LblResult = "result"

	opSucc   = "ok"
	opFailed = "err"
)

var constLabels prometheus.Labels

func init() {
	InitMetrics()
}

// SetConstLabels sets constant labels for metrics. It must be called before
// InitMetrics.
func SetConstLabels(kv ...string) {
	kvCount := len(kv)
	if kvCount%2 != 0 {
		panic("SetConstLabels requires an even number of arguments")
	}
	if kvCount == 0 {
		constLabels = nil
		return
	}
	constLabels = make(prometheus.Labels, kvCount/2)
	for i := 0; i < kvCount; i += 2 {
		constLabels[kv[i]] = kv[i+1]
	}
}

// InitMetrics is used to initialize metrics.
func InitMetrics() {
	InitWindowPlannerMetrics()
}

// RegisterMetrics registers the window planner metrics with r.
func RegisterMetrics(r prometheus.Registerer) {
	r.MustRegister(WindowPlanStrategyCounter)
	r.MustRegister(WindowPlanDuration)
	r.MustRegister(WindowSpecsPerQuery)
	r.MustRegister(WindowCoplanCounter)
}

// NewCounterVec creates a new CounterVec with const labels.
func NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	opts.ConstLabels = constLabels
	return prometheus.NewCounterVec(opts, labelNames)
}

// NewHistogram creates a new Histogram with const labels.
func NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.ConstLabels = constLabels
	return prometheus.NewHistogram(opts)
}

// NewHistogramVec creates a new HistogramVec with const labels.
func NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	opts.ConstLabels = constLabels
	return prometheus.NewHistogramVec(opts, labelNames)
}

// RetLabel returns "ok" when err == nil and "err" when err != nil.
// This could be useful when you need to observe the operation result.
func RetLabel(err error) string {
	if err == nil {
		return opSucc
	}
	return opFailed
}

// ErrorToLabel converts an error to a label, using its RFC code when it has
// one.
func ErrorToLabel(err error) string {
	if err == nil {
		return opSucc
	}
	if e, ok := errors.Cause(err).(*errors.Error); ok {
		return string(e.RFCCode())
	}
	return "unknown"
}
