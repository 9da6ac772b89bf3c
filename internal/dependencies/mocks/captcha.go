package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/realmgate/internal/services/botcheck"
)

// MockCaptcha is a CaptchaVerifier with a fixed answer that records its calls
type MockCaptcha struct {
	mu sync.Mutex

	// Accept is returned for every non-empty response
	Accept bool
	Calls  []CaptchaCall
}

// CaptchaCall is one recorded Verify invocation
type CaptchaCall struct {
	Response string
	RemoteIP string
}

// Ensure MockCaptcha implements CaptchaVerifier
var _ botcheck.CaptchaVerifier = (*MockCaptcha)(nil)

// NewMockCaptcha creates a MockCaptcha that accepts every non-empty response
func NewMockCaptcha() *MockCaptcha {
	return &MockCaptcha{Accept: true}
}

// Verify records the call and returns Accept, or false for an empty response
func (c *MockCaptcha) Verify(_ context.Context, response, remoteIP string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, CaptchaCall{Response: response, RemoteIP: remoteIP})
	return response != "" && c.Accept
}

// CallCount returns how many times Verify was called
func (c *MockCaptcha) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}
