// Copyright 2025 Tom Barlow
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

package tracing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records run and action outcomes. It implements
// operation.Recorder.
type Metrics struct {
	registry       *prometheus.Registry
	operationRuns  *prometheus.CounterVec
	actionRuns     *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
}

// NewMetrics returns metrics registered on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omcli_operation_runs_total",
			Help: "Total number of operation runs by outcome",
		}, []string{"operation", "outcome"}),
		actionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omcli_action_executions_total",
			Help: "Total number of dispatched actions by type and outcome",
		}, []string{"type", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "omcli_action_duration_seconds",
			Help:    "Action execution time in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
	}
	m.registry.MustRegister(m.operationRuns, m.actionRuns, m.actionDuration)
	return m
}

// RecordAction implements operation.Recorder.
func (m *Metrics) RecordAction(actionType, outcome string, d time.Duration) {
	m.actionRuns.WithLabelValues(actionType, outcome).Inc()
	m.actionDuration.WithLabelValues(actionType).Observe(d.Seconds())
}

// RecordOperation implements operation.Recorder.
func (m *Metrics) RecordOperation(operationID, outcome string, _ time.Duration) {
	m.operationRuns.WithLabelValues(operationID, outcome).Inc()
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes the metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
