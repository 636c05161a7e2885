package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/squadbook/internal/dependencies/mocks"
	"github.com/mcoot/squadbook/internal/services/accounts"
	sessionmemory "github.com/mcoot/squadbook/internal/session/memory"
	"github.com/mcoot/squadbook/internal/storage"
	"github.com/mcoot/squadbook/internal/storage/memory"
	"github.com/mcoot/squadbook/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App over the memory backend with mocked clock and
// randomness and the cheapest bcrypt cost
func NewTestApp() *TestApp {
	return NewTestAppWithBackend(memory.New())
}

// NewTestAppWithBackend is NewTestApp over the given backend
func NewTestAppWithBackend(backend storage.Backend) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	sessions := sessionmemory.New(mockClock, mockRandom, time.Hour)

	app := newWithDependencies(backend, sessions, mockClock, mockRandom,
		accounts.Config{BcryptCost: bcrypt.MinCost}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
