package mocks

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mcoot/realmgate/internal/dependencies/random"
)

// ErrRandomExhausted is returned when FailAfterQueue is set and the queue is empty
var ErrRandomExhausted = errors.New("mock random exhausted")

// MockRandom is a deterministic Random for tests
// Queued tokens are returned first, then a counter-based fallback
type MockRandom struct {
	mu sync.Mutex

	// TokenResults is a queue of results to return from Token
	TokenResults []string
	tokenIndex   int

	// FailAfterQueue makes Token return an error once the queue is drained
	FailAfterQueue bool

	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued token, or a unique padded counter value
func (r *MockRandom) Token(n int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokenIndex < len(r.TokenResults) {
		result := r.TokenResults[r.tokenIndex]
		r.tokenIndex++
		return result, nil
	}
	if r.FailAfterQueue {
		return "", ErrRandomExhausted
	}

	r.generated++
	s := fmt.Sprintf("%x", r.generated)
	if pad := 2*n - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s, nil
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = append(r.TokenResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = nil
	r.tokenIndex = 0
	r.generated = 0
	r.FailAfterQueue = false
}
