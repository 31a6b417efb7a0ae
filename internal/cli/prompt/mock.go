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

package prompt

import (
	"context"
	"fmt"
	"sync"
)

// MockPrompter implements Prompter with scripted responses for testing.
// Responses are strings or errors. Once the script is exhausted every
// call returns ErrAborted, which behaves like Ctrl+D.
type MockPrompter struct {
	mu           sync.Mutex
	responses    []any
	currentIndex int
	interactive  bool
	callLog      []string
}

// NewMockPrompter creates a new mock prompter with pre-scripted responses.
func NewMockPrompter(interactive bool, responses ...any) *MockPrompter {
	return &MockPrompter{
		responses:   responses,
		interactive: interactive,
		callLog:     make([]string, 0),
	}
}

// Input returns the next scripted response.
func (mp *MockPrompter) Input(ctx context.Context, message string) (string, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.callLog = append(mp.callLog, message)

	if mp.currentIndex >= len(mp.responses) {
		return "", ErrAborted
	}

	resp := mp.responses[mp.currentIndex]
	mp.currentIndex++

	switch v := resp.(type) {
	case string:
		return v, nil
	case error:
		return "", v
	default:
		return "", fmt.Errorf("mock response %d is %T, want string or error", mp.currentIndex-1, resp)
	}
}

// IsInteractive implements Prompter.
func (mp *MockPrompter) IsInteractive() bool {
	return mp.interactive
}

// GetCallLog returns the messages shown, in order.
func (mp *MockPrompter) GetCallLog() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	out := make([]string, len(mp.callLog))
	copy(out, mp.callLog)
	return out
}

// Remaining returns how many scripted responses are unused.
func (mp *MockPrompter) Remaining() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.responses) - mp.currentIndex
}

// Reset rewinds the script and clears the call log.
func (mp *MockPrompter) Reset() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.currentIndex = 0
	mp.callLog = make([]string, 0)
}
