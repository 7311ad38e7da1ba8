package rest

import (
	"context"
	"net/http"

	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/services"
)

// AuthAPI is the part of the auth service the HTTP layer uses.
type AuthAPI interface {
	Authenticator
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// TodoAPI is the part of the todo service the HTTP layer uses.
type TodoAPI interface {
	Save(ctx context.Context, ownerID string, in services.TodoInput) (*models.Todo, error)
	List(ctx context.Context, ownerID string) ([]*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type handlers struct {
	auth   AuthAPI
	todos  TodoAPI
	logger logging.Logger
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	u, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(w, r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(w, r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	items, err := h.todos.List(r.Context(), userID)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	resp := make([]todoResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, toTodoResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) saveTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req todoRequest
	if err := decode(w, r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	t, err := h.todos.Save(r.Context(), userID, services.TodoInput{
		ID:         req.ID,
		Title:      req.Title,
		IsComplete: req.IsComplete,
		Color:      req.Color,
	})
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTodoResponse(t))
}

func (h *handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	if err := h.todos.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
