package grpc

import (
	"context"

	"github.com/sameershelar/toodo/internal/api"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/services"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	u, err := s.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &api.RegisterResponse{ID: u.ID, Email: u.Email}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {
	pair, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	pair, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.Empty, error) {
	if err := s.auth.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListTodos(ctx context.Context, _ *api.Empty) (*api.ListTodosResponse, error) {
	items, err := s.todos.List(ctx, userIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &api.ListTodosResponse{Todos: make([]*api.Todo, 0, len(items))}
	for _, t := range items {
		resp.Todos = append(resp.Todos, toAPITodo(t))
	}
	return resp, nil
}

func (s *GRPCServer) SaveTodo(ctx context.Context, req *api.SaveTodoRequest) (*api.SaveTodoResponse, error) {
	t, err := s.todos.Save(ctx, userIDFromContext(ctx), services.TodoInput{
		ID:         req.Todo.ID,
		Title:      req.Todo.Title,
		IsComplete: req.Todo.IsComplete,
		Color:      req.Todo.Color,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.SaveTodoResponse{Todo: toAPITodo(t)}, nil
}

func (s *GRPCServer) DeleteTodo(ctx context.Context, req *api.DeleteTodoRequest) (*api.Empty, error) {
	if err := s.todos.Delete(ctx, userIDFromContext(ctx), req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func toAPITodo(t *models.Todo) *api.Todo {
	return &api.Todo{ID: t.ID, Title: t.Title, IsComplete: t.IsComplete, Color: t.Color, CreatedAt: t.CreatedAt}
}
