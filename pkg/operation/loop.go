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

package operation

// LoopState tracks active loops and the cursor of a run.
type LoopState struct {
	// Index is the position of the next action to run.
	Index int

	starts map[int]int
	stack  []int
}

// NewLoopState returns a state positioned at the first action.
func NewLoopState() *LoopState {
	return &LoopState{starts: make(map[int]int)}
}

// Start records the loop n at the current index and pushes it, unless n is
// already active.
func (s *LoopState) Start(n int) {
	if s.InLoop(n) {
		return
	}
	s.starts[n] = s.Index
	s.stack = append(s.stack, n)
}

// InLoop reports whether n is on the stack.
func (s *LoopState) InLoop(n int) bool {
	for _, active := range s.stack {
		if active == n {
			return true
		}
	}
	return false
}

// Top returns the innermost active loop.
func (s *LoopState) Top() (int, bool) {
	if len(s.stack) == 0 {
		return 0, false
	}
	return s.stack[len(s.stack)-1], true
}

// Pop removes the innermost active loop.
func (s *LoopState) Pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Depth returns the number of active loops.
func (s *LoopState) Depth() int {
	return len(s.stack)
}

// Rewind moves the cursor to the start of loop n.
func (s *LoopState) Rewind(n int) bool {
	start, ok := s.starts[n]
	if !ok {
		return false
	}
	s.Index = start
	return true
}

// Advance moves the cursor to the next action.
func (s *LoopState) Advance() {
	s.Index++
}
