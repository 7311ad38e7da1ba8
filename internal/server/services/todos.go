package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/repositories/repomanager"
	"github.com/sameershelar/toodo/internal/server/validation"
)

// TodoInput is what a client may set on a todo. An empty ID creates a new
// todo; a known ID updates it.
type TodoInput struct {
	ID         string `validate:"omitempty,uuid" label:"Todo id"`
	Title      string `validate:"notblank"`
	IsComplete bool
	Color      int64
}

type todoRef struct {
	ID string `validate:"required,uuid" label:"Todo id"`
}

// TodoService manages todos on behalf of an authenticated owner.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *TodoService {
	return &TodoService{db: db, repomanager: m, logger: l.With("module", "todo_service")}
}

func (s *TodoService) Save(ctx context.Context, ownerID string, in TodoInput) (*models.Todo, error) {
	if problems := validation.Struct(in); len(problems) > 0 {
		return nil, BadRequest(problems...)
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	todo := &models.Todo{ID: id, OwnerID: ownerID, Title: in.Title, IsComplete: in.IsComplete, Color: in.Color}

	var saved *models.Todo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		existing, err := repo.FindByID(ctx, id)
		switch {
		case err == nil && existing.OwnerID != ownerID:
			return Forbidden(MsgTodoNotOwned)
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return Internal(fmt.Errorf("error searching todo: %w", err))
		}

		saved, err = repo.Save(ctx, todo)
		if err != nil {
			if errors.Is(err, common.ErrorForbidden) {
				return Forbidden(MsgTodoNotOwned)
			}
			return Internal(fmt.Errorf("error saving todo: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "save", AsError(err))
	}
	return saved, nil
}

func (s *TodoService) List(ctx context.Context, ownerID string) ([]*models.Todo, error) {
	list, err := s.repomanager.Todos(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.fail(ctx, "list", Internal(fmt.Errorf("error listing todos: %w", err)))
	}
	return list, nil
}

func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	if problems := validation.Struct(todoRef{ID: id}); len(problems) > 0 {
		return BadRequest(problems...)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		todo, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return NotFound(MsgTodoNotFound)
			}
			return Internal(fmt.Errorf("error searching todo: %w", err))
		}
		if todo.OwnerID != ownerID {
			return Forbidden(MsgTodoForbidden)
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return Internal(fmt.Errorf("error deleting todo: %w", err))
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, "delete", AsError(err))
	}
	return nil
}

func (s *TodoService) fail(ctx context.Context, operation string, err *Error) error {
	if err.Kind == KindInternal {
		s.logger.Error(ctx, "todo "+operation+" failed", "error", err.Cause)
	}
	return err
}
