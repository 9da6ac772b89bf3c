package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/realmgate/internal/middleware"
)

// Logging creates logging middleware for the web interface
func Logging(logger *slog.Logger, observer middleware.RequestObserver) func(http.Handler) http.Handler {
	return middleware.Logging(logger, observer)
}
