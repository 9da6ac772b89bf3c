package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"filippo.io/csrf"
	"github.com/gorilla/mux"

	"github.com/mcoot/realmgate/internal/metrics"
	basemiddleware "github.com/mcoot/realmgate/internal/middleware"
	csrftoken "github.com/mcoot/realmgate/internal/services/csrf"
	"github.com/mcoot/realmgate/internal/services/registration"
	"github.com/mcoot/realmgate/internal/services/session"
	"github.com/mcoot/realmgate/internal/web/handler"
	"github.com/mcoot/realmgate/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger              *slog.Logger
	Metrics             *metrics.Metrics // optional; records request counts when set
	SessionService      *session.Service
	RegistrationService *registration.Service
	TokenGuard          *csrftoken.Guard
	Register            handler.RegisterConfig
	HealthChecks        map[string]handler.Pinger
	Throttle            *basemiddleware.Throttle // optional
	Headers             middleware.HeaderConfig
	CookieSecure        bool
	TrustedOrigins      []string
	StaticDir           string // Path to static files directory
}

// NewRouter creates the web handler with all routes and middleware configured
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	r := mux.NewRouter()

	// Create handlers
	registerHandler := handler.NewRegisterHandler(cfg.RegistrationService, cfg.TokenGuard, cfg.Register, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.HealthChecks, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Liveness for load balancers; metrics live on the operator listener
	r.HandleFunc("/healthz", healthHandler.Health).Methods(http.MethodGet)

	// Registration page (session required)
	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Session(cfg.SessionService, middleware.SessionConfig{CookieSecure: cfg.CookieSecure}, cfg.Logger))
	pages.HandleFunc("/", registerHandler.Page).Methods(http.MethodGet)
	pages.HandleFunc("/", registerHandler.Submit).Methods(http.MethodPost)

	// Reject cross-origin form posts before any session work happens
	protection := csrf.New()
	for _, origin := range cfg.TrustedOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid trusted origin %q: %w", origin, err)
		}
	}

	var h http.Handler = protection.Handler(r)
	if cfg.Throttle != nil && cfg.Throttle.Enabled() {
		h = cfg.Throttle.Middleware(h)
	}
	h = middleware.SecurityHeaders(cfg.Headers)(h)
	h = middleware.Logging(cfg.Logger, observer(cfg.Metrics))(h)
	h = middleware.Recovery(cfg.Logger)(h)
	h = basemiddleware.RequestID()(h)
	return h, nil
}

// NewOperatorRouter creates the handler for the operator listener, serving
// /metrics and /healthz away from the public site
func NewOperatorRouter(m *metrics.Metrics, checks map[string]handler.Pinger, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handler.NewHealthHandler(checks, logger).Health).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.Recovery(logger)(h)
	h = basemiddleware.RequestID()(h)
	return h
}

// observer avoids handing Logging a typed nil
func observer(m *metrics.Metrics) basemiddleware.RequestObserver {
	if m == nil {
		return nil
	}
	return m
}
