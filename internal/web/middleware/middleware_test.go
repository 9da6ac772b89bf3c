package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/realmgate/internal/dependencies/mocks"
	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/services/session"
	"github.com/mcoot/realmgate/internal/storage/memory"
)

type SessionSuite struct {
	suite.Suite
	store   *memory.Storage
	service *session.Service
	logger  *slog.Logger
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.store = memory.New()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = session.New(s.store, clock, mocks.NewMockRandom(), session.DefaultConfig(), s.logger)
}

func (s *SessionSuite) handler(secure bool, next http.HandlerFunc) http.Handler {
	return Session(s.service, SessionConfig{CookieSecure: secure}, s.logger)(next)
}

func (s *SessionSuite) TestNewVisitorGetsCookie() {
	var seen *model.Session
	h := s.handler(true, func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Require().NotNil(seen)
	cookies := rr.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(SessionCookieName, cookies[0].Name)
	s.Equal(string(seen.ID), cookies[0].Value)
	s.True(cookies[0].HttpOnly)
	s.True(cookies[0].Secure)
	s.Equal(http.SameSiteStrictMode, cookies[0].SameSite)
}

func (s *SessionSuite) TestChangesSavedBeforeBodyWritten() {
	var id model.SessionID
	h := s.handler(false, func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		id = sess.ID
		s.Require().NoError(sess.Set("greeting", "hello"))
		_, _ = w.Write([]byte("ok"))

		// Already persisted by the time the first byte is written
		stored, err := s.store.GetSession(r.Context(), id)
		s.Require().NoError(err)
		s.Contains(stored.Values, "greeting")
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	s.False(rr.Result().Cookies()[0].Secure)
}

func (s *SessionSuite) TestSavedWhenHandlerWritesNothing() {
	h := s.handler(false, func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rr.Result().Cookies()
	s.Require().Len(cookies, 1)
	_, err := s.store.GetSession(context.Background(), model.SessionID(cookies[0].Value))
	s.NoError(err)
}

func (s *SessionSuite) TestExistingSessionReused() {
	var first, second model.SessionID
	h := s.handler(false, func(w http.ResponseWriter, r *http.Request) {
		if first == "" {
			first = GetSession(r.Context()).ID
		} else {
			second = GetSession(r.Context()).ID
		}
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rr.Result().Cookies()[0])
	h.ServeHTTP(httptest.NewRecorder(), req)

	s.Equal(first, second)
}

func (s *SessionSuite) TestStoreFailureIs503() {
	svc := session.New(failingStore{}, mocks.NewMockClock(time.Now()), mocks.NewMockRandom(), session.DefaultConfig(), s.logger)
	called := false
	h := Session(svc, SessionConfig{}, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	s.Equal(http.StatusServiceUnavailable, rr.Code)
	s.False(called)
}

func TestGetSessionMissing(t *testing.T) {
	if GetSession(context.Background()) != nil {
		t.Error("expected nil session outside the middleware")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(DefaultHeaderConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
	}
	for name, value := range want {
		if got := rr.Header().Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	csp := HeaderConfig{
		CaptchaScriptOrigins: []string{"https://captcha.example"},
		CaptchaFrameOrigins:  []string{"https://frames.example"},
	}.ContentSecurityPolicy()

	for _, directive := range []string{
		"default-src 'self'",
		"script-src 'self' 'unsafe-inline' https://captcha.example",
		"frame-src https://frames.example",
		"frame-ancestors 'none'",
	} {
		if !slices.Contains(strings.Split(csp, "; "), directive) {
			t.Errorf("CSP %q missing %q", csp, directive)
		}
	}
}

func TestRecoveryRendersErrorPage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

type failingStore struct{}

func (failingStore) SaveSession(context.Context, *model.Session) error { return errors.New("down") }
func (failingStore) GetSession(context.Context, model.SessionID) (*model.Session, error) {
	return nil, errors.New("down")
}
func (failingStore) DeleteSession(context.Context, model.SessionID) error { return errors.New("down") }
