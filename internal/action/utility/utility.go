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

// Package utility provides small general-purpose actions: ids,
// timestamps and pauses.
package utility

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// PackName is the name the pack registers under.
const PackName = "utility"

// MaxSleepDuration bounds the sleep action.
const MaxSleepDuration = 5 * time.Minute

// now is replaced in tests.
var now = time.Now

var str = parameter.TypeString

// Pack returns the utility action pack.
func Pack() action.Pack {
	return action.Pack{Name: PackName, Actions: []action.Definition{
		{Name: "generate_uuid", Func: GenerateUUID, Parameters: map[string]action.ParameterSpec{
			"generated_id": action.Out(str),
		}},
		{Name: "get_timestamp", Func: Timestamp, Parameters: map[string]action.ParameterSpec{
			"timestamp_format": action.In(str),
			"timezone":         action.In(str),
			"timestamp":        action.Out(str),
		}},
		{Name: "sleep", Func: Sleep, Parameters: map[string]action.ParameterSpec{
			"duration": action.In(str),
		}},
	}}
}

// GenerateUUID stores a random (version 4) UUID in generated_id.
func GenerateUUID(_ context.Context, call *operation.Call) *operation.Result {
	id, err := uuid.NewRandom()
	if err != nil {
		return action.Failf("An unexpected error occurred while generating an id: %v", err)
	}
	return operation.Succeeded("Id generated", call.Output("generated_id", str, id.String()))
}

// Timestamp stores the current time in timestamp. timestamp_format is
// unix, unix_ms, rfc3339 (default) or a Go layout; timezone is an IANA
// name, "Local" or "UTC" (default).
func Timestamp(_ context.Context, call *operation.Call) *operation.Result {
	loc := time.UTC
	switch tz := call.ValueOr("timezone", "UTC"); tz {
	case "UTC":
	case "Local":
		loc = time.Local
	default:
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return action.Failf("An unexpected error occurred while getting the timestamp: invalid timezone %s", tz)
		}
	}

	t := now().In(loc)
	var value string
	switch format := call.ValueOr("timestamp_format", "rfc3339"); format {
	case "unix":
		value = strconv.FormatInt(t.Unix(), 10)
	case "unix_ms":
		value = strconv.FormatInt(t.UnixMilli(), 10)
	case "rfc3339":
		value = t.Format(time.RFC3339)
	default:
		value = t.Format(format)
	}
	return operation.Succeeded("Timestamp created", call.Output("timestamp", str, value))
}

// Sleep pauses for duration (a Go duration such as 1.5s) or until ctx is
// done.
func Sleep(ctx context.Context, call *operation.Call) *operation.Result {
	raw, err := action.Require(call, "duration")
	if err != nil {
		return action.Failf("An unexpected error occurred while sleeping: %v", err)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return action.Failf("An unexpected error occurred while sleeping: invalid duration format: %s", raw)
	}
	if d <= 0 || d > MaxSleepDuration {
		return action.Failf("An unexpected error occurred while sleeping: duration must be between 0 and %v", MaxSleepDuration)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return operation.Succeeded(fmt.Sprintf("Slept for %v", d))
	case <-ctx.Done():
		return action.Failf("An unexpected error occurred while sleeping: sleep cancelled: %v", ctx.Err())
	}
}
