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

package shared

// Error codes for structured JSON output
const (
	// Argument errors (E001-E099)
	ErrorCodeInvalidArguments = "E001" // Bad flag or positional parameter
	ErrorCodeUnknownOperation = "E002" // -o names no operation

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E201" // Custom directory, API definition or tree problem

	// Execution errors (E400-E499)
	ErrorCodeExecutionFailed = "E403" // Operation run failed
)

// ErrorCode maps err to a JSON error code
func ErrorCode(err error) string {
	switch ExitCode(err) {
	case ExitSuccess:
		return ""
	case ExitInvalidArguments:
		return ErrorCodeInvalidArguments
	case ExitConfigError:
		return ErrorCodeInvalidConfig
	default:
		return ErrorCodeExecutionFailed
	}
}
