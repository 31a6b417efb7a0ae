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

/*
Package tracing records what an omcli run did.

Spans come from an OpenTelemetry tracer provider. The operation executor
opens one omcli.operation span per run and one omcli.action span per
dispatched action. When a trace file is configured the spans are written
to it as JSON by the stdout exporter; otherwise the tracer is a no-op.

	provider, err := tracing.NewProvider(tracing.Config{File: "trace.json"})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(context.Background())

	executor.WithTracer(provider.Tracer())

Run metrics are kept in a private Prometheus registry and written in the
text exposition format when the process exits:

	metrics := tracing.NewMetrics()
	executor.WithRecorder(metrics)
	defer metrics.WriteFile("omcli.prom")
*/
package tracing
