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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/pkg/operation"
)

var _ operation.Recorder = (*Metrics)(nil)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()
	m.RecordAction("API_REQUEST", "success", 20*time.Millisecond)
	m.RecordAction("API_REQUEST", "failure", 5*time.Millisecond)
	m.RecordAction("FUNCTION_CALL", "success", time.Millisecond)
	m.RecordOperation("list_users", "success", time.Second)
	m.RecordOperation("list_users", "success", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.actionRuns.WithLabelValues("API_REQUEST", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actionRuns.WithLabelValues("API_REQUEST", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationRuns.WithLabelValues("list_users", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.actionDuration))
}

func TestMetricsWriteFile(t *testing.T) {
	m := NewMetrics()
	m.RecordOperation("ping", "aborted", 0)
	path := filepath.Join(t.TempDir(), "omcli.prom")

	require.NoError(t, m.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `omcli_operation_runs_total{operation="ping",outcome="aborted"} 1`)
}
