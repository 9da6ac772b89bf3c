package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/realmgate/internal/dependencies/mocks"
	"github.com/mcoot/realmgate/internal/model"
)

type LimiterSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	limiter *Limiter
	session *model.Session
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.limiter = New(s.clock, Config{MaxAttempts: 5, Window: 300 * time.Second})
	s.session = model.NewSession("sess", s.clock.Now())
}

func (s *LimiterSuite) TestFirstCallInitializesCounter() {
	s.True(s.limiter.Allow(s.session, "10.0.0.1"))
	s.Equal(1, s.limiter.Attempts(s.session, "10.0.0.1"))
}

func (s *LimiterSuite) TestFiveCallsAllowedWithIncrementingCounts() {
	for i := 1; i <= 5; i++ {
		s.True(s.limiter.Allow(s.session, "10.0.0.1"), "attempt %d", i)
		s.Equal(i, s.limiter.Attempts(s.session, "10.0.0.1"))
		s.clock.Advance(10 * time.Second)
	}
}

func (s *LimiterSuite) TestSixthCallRejectedWithoutIncrementing() {
	for range 5 {
		s.limiter.Allow(s.session, "10.0.0.1")
	}

	s.False(s.limiter.Allow(s.session, "10.0.0.1"))
	s.False(s.limiter.Allow(s.session, "10.0.0.1"))
	s.Equal(5, s.limiter.Attempts(s.session, "10.0.0.1"))
}

func (s *LimiterSuite) TestStillRejectedAtWindowBoundary() {
	for range 5 {
		s.limiter.Allow(s.session, "10.0.0.1")
	}

	s.clock.Advance(300 * time.Second)

	s.False(s.limiter.Allow(s.session, "10.0.0.1"))
}

func (s *LimiterSuite) TestResetsAfterWindowElapsed() {
	for range 6 {
		s.limiter.Allow(s.session, "10.0.0.1")
	}

	s.clock.Advance(301 * time.Second)

	s.True(s.limiter.Allow(s.session, "10.0.0.1"))
	s.Equal(1, s.limiter.Attempts(s.session, "10.0.0.1"))
}

func (s *LimiterSuite) TestWindowStartsAtFirstAttempt() {
	s.limiter.Allow(s.session, "10.0.0.1")
	s.clock.Advance(200 * time.Second)
	for range 4 {
		s.limiter.Allow(s.session, "10.0.0.1")
	}
	s.False(s.limiter.Allow(s.session, "10.0.0.1"))

	// 301s after the first attempt the window resets, even though later
	// attempts were more recent
	s.clock.Advance(101 * time.Second)
	s.True(s.limiter.Allow(s.session, "10.0.0.1"))
}

func (s *LimiterSuite) TestIdentifiersAreIndependent() {
	for range 5 {
		s.limiter.Allow(s.session, "10.0.0.1")
	}

	s.False(s.limiter.Allow(s.session, "10.0.0.1"))
	s.True(s.limiter.Allow(s.session, "10.0.0.2"))
}

func (s *LimiterSuite) TestSessionsAreIndependent() {
	for range 5 {
		s.limiter.Allow(s.session, "10.0.0.1")
	}

	other := model.NewSession("other", s.clock.Now())
	s.True(s.limiter.Allow(other, "10.0.0.1"))
}

func (s *LimiterSuite) TestCorruptCounterResets() {
	s.session.Values[keyPrefix+"10.0.0.1"] = []byte(`"not a counter"`)

	s.True(s.limiter.Allow(s.session, "10.0.0.1"))
	s.Equal(1, s.limiter.Attempts(s.session, "10.0.0.1"))
}

func (s *LimiterSuite) TestDefaultsApplied() {
	l := New(s.clock, Config{})
	s.Equal(5, l.maxAttempts)
	s.Equal(300*time.Second, l.window)
}
