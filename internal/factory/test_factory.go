package factory

import (
	"time"

	"github.com/mcoot/realmgate/internal/dependencies/mocks"
	"github.com/mcoot/realmgate/internal/services/audit"
	"github.com/mcoot/realmgate/internal/storage"
	"github.com/mcoot/realmgate/internal/storage/memory"
	"github.com/mcoot/realmgate/internal/testutil"
	"github.com/mcoot/realmgate/internal/web/handler"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Store backs sessions, accounts and security events
	Store *memory.Storage

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MockCaptcha *mocks.MockCaptcha
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(DefaultConfig())
}

// NewTestAppWithConfig is NewTestApp with custom service settings.
// Backend and security log settings in cfg are ignored.
func NewTestAppWithConfig(cfg Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewWithClock(mockClock, storage.DefaultSessionTTL)
	mockRandom := mocks.NewMockRandom()
	mockCaptcha := mocks.NewMockCaptcha()
	logger := testutil.NopLogger()

	app := &App{HealthChecks: make(map[string]handler.Pinger)}
	app.wire(store, store, audit.NewStoreRecorder(store, logger), mockCaptcha, mockClock, mockRandom, cfg, logger)

	return &TestApp{
		App:         app,
		Store:       store,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MockCaptcha: mockCaptcha,
	}
}
