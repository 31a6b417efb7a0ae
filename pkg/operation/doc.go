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

// Package operation runs actions from an operation tree against a shared
// parameter scope.
//
// An operation is an ordered list of actions. The Executor walks that list
// with a single cursor: loop markers move the cursor backwards to replay a
// section, condition groups skip actions, and every action contributes its
// output parameters to the scope seen by the actions after it. When the run
// completes, the command parameters collected along the way are serialized
// into a command line that replays the run unattended.
package operation
