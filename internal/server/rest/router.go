package rest

import (
	"context"
	"net/http"

	"github.com/sameershelar/toodo/internal/logging"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig holds everything NewRouter wires together. Metrics, Observer
// and Health are optional.
type RouterConfig struct {
	Auth     AuthAPI
	Todos    TodoAPI
	Logger   logging.Logger
	Observer HTTPObserver
	Metrics  http.Handler
	Health   Pinger
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	h := &handlers{auth: cfg.Auth, todos: cfg.Todos, logger: cfg.Logger.With("module", "rest")}
	protected := func(f http.HandlerFunc) http.Handler {
		return RequireAccessToken(cfg.Auth, h.logger, f)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
	mux.HandleFunc("POST /auth/logout", h.logout)

	mux.Handle("GET /todos", protected(h.listTodos))
	mux.Handle("POST /todos", protected(h.saveTodo))
	mux.Handle("DELETE /todos/{id}", protected(h.deleteTodo))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health.PingContext(r.Context()); err != nil {
				h.logger.Warn(r.Context(), "health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return instrument(cfg.Observer, h.logger, mux)
}
