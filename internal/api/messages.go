package api

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by Login and RefreshToken.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" label:"Refresh token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" label:"Refresh token"`
}

type Empty struct{}

type Todo struct {
	ID         string    `json:"id,omitempty" validate:"omitempty,uuid" label:"Todo id"`
	Title      string    `json:"title" validate:"notblank"`
	IsComplete bool      `json:"isComplete"`
	Color      int64     `json:"color"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

type ListTodosResponse struct {
	Todos []*Todo `json:"todos"`
}

type SaveTodoRequest struct {
	Todo *Todo `json:"todo" validate:"required"`
}

type SaveTodoResponse struct {
	Todo *Todo `json:"todo"`
}

type DeleteTodoRequest struct {
	ID string `json:"id" validate:"required,uuid" label:"Todo id"`
}

type PingResponse struct {
	Status string `json:"status"`
}
