package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/utils/response"
)

// Recovery is the routing-layer catch-all: panics become a generic 500,
// internal detail is logged, never leaked.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		defer func() {
			if rec := recover(); rec != nil {
				LoggerFromContext(r.Context()).Error("Panic recovered",
					slog.Any("panic", rec),
					slog.String("endpoint", r.URL.Path),
				)
				response.WriteJson(w, http.StatusInternalServerError, response.GeneralError(errors.New("an unexpected error occurred")))
			}
		}()

		next.ServeHTTP(w, r)

	})
}
