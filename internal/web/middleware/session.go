package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/services/session"
)

// SessionCookieName is the cookie holding the session id
const SessionCookieName = "REALM_SESSION"

type contextKey string

const sessionContextKey contextKey = "session"

// GetSession retrieves the visitor's session from the request context
// Returns nil outside the Session middleware
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// SessionConfig configures the session cookie
type SessionConfig struct {
	CookieSecure bool
}

// Session loads the visitor's session before the handler runs and persists it,
// along with the cookie, just before the response is first written
func Session(service *session.Service, cfg SessionConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id model.SessionID
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				id = model.SessionID(cookie.Value)
			}

			sess, err := service.Load(r.Context(), id)
			if err != nil {
				logger.Error("failed to load session", slog.String("error", err.Error()))
				http.Error(w, "Service temporarily unavailable. Please try again later.", http.StatusServiceUnavailable)
				return
			}

			sw := &sessionWriter{
				ResponseWriter: w,
				commit: func(w http.ResponseWriter) {
					if err := service.Save(r.Context(), sess); err != nil {
						logger.Error("failed to save session", slog.String("error", err.Error()))
					}
					http.SetCookie(w, &http.Cookie{
						Name:     SessionCookieName,
						Value:    string(sess.ID),
						Path:     "/",
						HttpOnly: true,
						Secure:   cfg.CookieSecure,
						SameSite: http.SameSiteStrictMode,
					})
				},
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.commitOnce()
		})
	}
}

// sessionWriter runs commit exactly once, before any header or body is sent
type sessionWriter struct {
	http.ResponseWriter
	commit    func(http.ResponseWriter)
	committed bool
}

func (sw *sessionWriter) commitOnce() {
	if sw.committed {
		return
	}
	sw.committed = true
	sw.commit(sw.ResponseWriter)
}

func (sw *sessionWriter) WriteHeader(status int) {
	sw.commitOnce()
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commitOnce()
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
