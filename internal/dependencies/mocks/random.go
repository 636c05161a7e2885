package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/squadbook/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued results are returned first; once a queue is empty, Intn returns 0
// and String returns a sequential "rand-N" value so generated tokens stay
// unique.
type MockRandom struct {
	mu sync.Mutex

	// IntnResults is a queue of results to return from Intn
	IntnResults []int

	// StringResults is a queue of results to return from String
	StringResults []string

	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(_ int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.IntnResults) == 0 {
		return 0
	}
	result := r.IntnResults[0]
	r.IntnResults = r.IntnResults[1:]
	return result
}

// String returns the next queued result, or a sequential fallback
func (r *MockRandom) String(_ int, _ string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.StringResults) == 0 {
		r.generated++
		return fmt.Sprintf("rand-%d", r.generated)
	}
	result := r.StringResults[0]
	r.StringResults = r.StringResults[1:]
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}
