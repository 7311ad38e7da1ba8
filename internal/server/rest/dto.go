package rest

import (
	"time"

	"github.com/sameershelar/toodo/internal/server/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" label:"Refresh token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type todoRequest struct {
	ID         string `json:"id,omitempty" validate:"omitempty,uuid" label:"Todo id"`
	Title      string `json:"title" validate:"notblank"`
	IsComplete bool   `json:"isComplete"`
	Color      int64  `json:"color"`
}

type todoResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	IsComplete bool      `json:"isComplete"`
	Color      int64     `json:"color"`
	CreatedAt  time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

func toTodoResponse(t *models.Todo) todoResponse {
	return todoResponse{ID: t.ID, Title: t.Title, IsComplete: t.IsComplete, Color: t.Color, CreatedAt: t.CreatedAt}
}
