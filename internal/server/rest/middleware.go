package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/services"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserIDFromContext returns the user authenticated by RequireAccessToken.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// RequireAccessToken rejects requests without a valid access token in the
// Authorization header. Refresh tokens are not accepted.
func RequireAccessToken(a Authenticator, l logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			writeError(r.Context(), w, l, services.Unauthorized("missing access token", services.ReasonMalformed, nil))
			return
		}
		userID, err := a.Authenticate(r.Context(), header)
		if err != nil {
			writeError(r.Context(), w, l, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// HTTPObserver receives one latency observation per request.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument logs and measures every request. The route label is the
// matched mux pattern, so path parameters do not explode cardinality.
func instrument(o HTTPObserver, l logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				l.Error(r.Context(), "panic in handler", "panic", p, "path", r.URL.Path)
				writeJSON(rec, http.StatusInternalServerError, errorResponse{Error: services.MsgInternal})
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			d := time.Since(start)
			if o != nil {
				o.ObserveHTTP(r.Method, route, rec.status, d)
			}
			l.Debug(r.Context(), "http request", "method", r.Method, "route", route, "status", rec.status, "duration", d)
		}()

		next.ServeHTTP(rec, r)
	})
}
