// Package services contains the server-side business logic: account
// registration, login and refresh-token rotation (AuthService) and todo
// management (TodoService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sameershelar/toodo/internal/common"
	"github.com/sameershelar/toodo/internal/dbx"
	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/auth"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/repositories/repomanager"
	"github.com/sameershelar/toodo/internal/server/validation"
)

// Reasons attached to Unauthorized errors. They reach logs and metrics,
// never clients.
const (
	ReasonMalformed       = "malformed"
	ReasonExpired         = "expired"
	ReasonWrongType       = "wrong_type"
	ReasonUnknownUser     = "unknown_user"
	ReasonNotFound        = "not_found"
	ReasonAlreadyConsumed = "already_consumed"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// OutcomeRecorder receives one observation per auth operation.
type OutcomeRecorder interface {
	RecordAuth(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string) {}

// AuthService registers users, checks credentials and rotates refresh
// tokens. It keeps no per-user state; all coordination happens in the
// stores.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	signer      *auth.Signer
	logger      logging.Logger
	recorder    OutcomeRecorder
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type AuthOption func(*AuthService)

func WithOutcomeRecorder(r OutcomeRecorder) AuthOption {
	return func(s *AuthService) { s.recorder = r }
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, signer *auth.Signer, l logging.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		signer:      signer,
		logger:      l.With("module", "auth_service"),
		recorder:    nopRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. An email already in use yields Conflict,
// whether it is caught by the lookup or by the store's unique constraint.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if problems := s.checkCredentials(email, password); len(problems) > 0 {
		return nil, s.done(ctx, "register", BadRequest(problems...))
	}

	users := s.repomanager.Users(s.db)

	_, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, s.done(ctx, "register", Conflict(MsgEmailTaken))
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.done(ctx, "register", Internal(fmt.Errorf("error searching user: %w", err)))
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, s.done(ctx, "register", BadRequest(s.passwordTooLong()))
	}
	if err != nil {
		return nil, s.done(ctx, "register", Internal(fmt.Errorf("error hashing password: %w", err)))
	}

	user, err := users.Save(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, s.done(ctx, "register", Conflict(MsgEmailTaken))
		}
		return nil, s.done(ctx, "register", Internal(fmt.Errorf("error creating user: %w", err)))
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	s.done(ctx, "register", nil)
	return user, nil
}

// Login checks the password and issues a new token pair. Unknown email and
// wrong password are indistinguishable to the caller; input is not checked
// for shape, so a malformed email is just an unknown one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummy())
			return nil, s.done(ctx, "login", InvalidCredentials())
		}
		return nil, s.done(ctx, "login", Internal(fmt.Errorf("error searching user: %w", err)))
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.done(ctx, "login", InvalidCredentials())
	}

	pair, err := s.issuePair(ctx, s.db, user.ID)
	if err != nil {
		return nil, s.done(ctx, "login", AsError(err))
	}
	s.done(ctx, "login", nil)
	return pair, nil
}

// Refresh consumes a refresh token and returns a new pair. Lookup, single
// use deletion and the new record all happen in one transaction, and the
// deletion must report that it removed the record: of two concurrent calls
// with the same token only one can see that.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.signer.Inspect(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, s.done(ctx, "refresh", Unauthorized(MsgInvalidRefresh, tokenReason(err), err))
	}
	userID := claims.Subject
	if _, err := uuid.Parse(userID); err != nil {
		return nil, s.done(ctx, "refresh", Unauthorized(MsgInvalidRefresh, ReasonMalformed, err))
	}
	tokenHash := auth.HashToken(auth.StripBearer(refreshToken))

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).FindByID(ctx, userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return Unauthorized(MsgInvalidRefresh, ReasonUnknownUser, err)
			}
			return Internal(fmt.Errorf("error searching user: %w", err))
		}

		tokens := s.repomanager.RefreshTokens(tx)
		if _, err := tokens.Find(ctx, userID, tokenHash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return Unauthorized(MsgInvalidRefresh, ReasonNotFound, err)
			}
			return Internal(fmt.Errorf("error searching refresh token: %w", err))
		}

		removed, err := tokens.Delete(ctx, userID, tokenHash)
		if err != nil {
			return Internal(fmt.Errorf("error deleting refresh token: %w", err))
		}
		if !removed {
			return Unauthorized(MsgInvalidRefresh, ReasonAlreadyConsumed, nil)
		}

		var issueErr error
		pair, issueErr = s.issuePair(ctx, tx, userID)
		return issueErr
	})
	if err != nil {
		return nil, s.done(ctx, "refresh", AsError(err))
	}
	s.done(ctx, "refresh", nil)
	return pair, nil
}

// Logout deletes the record of a refresh token. It is idempotent: a token
// already consumed or expired is not an error as long as it is genuine.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.signer.Inspect(refreshToken, auth.RefreshToken)
	if err != nil {
		return s.done(ctx, "logout", Unauthorized(MsgInvalidRefresh, tokenReason(err), err))
	}
	tokenHash := auth.HashToken(auth.StripBearer(refreshToken))
	if _, err := s.repomanager.RefreshTokens(s.db).Delete(ctx, claims.Subject, tokenHash); err != nil {
		return s.done(ctx, "logout", Internal(fmt.Errorf("error deleting refresh token: %w", err)))
	}
	s.done(ctx, "logout", nil)
	return nil
}

// Authenticate resolves an access token to the user id it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	claims, err := s.signer.Inspect(accessToken, auth.AccessToken)
	if err != nil {
		e := Unauthorized(MsgInvalidAccess, tokenReason(err), err)
		s.logger.Debug(ctx, "access token rejected", "reason", e.Reason)
		return "", e
	}
	return claims.Subject, nil
}

func (s *AuthService) issuePair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	access, err := s.signer.IssueAccess(userID)
	if err != nil {
		return nil, Internal(fmt.Errorf("error issuing access token: %w", err))
	}
	refresh, err := s.signer.IssueRefresh(userID)
	if err != nil {
		return nil, Internal(fmt.Errorf("error issuing refresh token: %w", err))
	}
	expiresAt := s.now().Add(auth.RefreshTokenValidity)
	if err := s.repomanager.RefreshTokens(db).Save(ctx, userID, auth.HashToken(refresh), expiresAt); err != nil {
		return nil, Internal(fmt.Errorf("error storing refresh token: %w", err))
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// done logs and records the outcome of operation and returns err unchanged.
func (s *AuthService) done(ctx context.Context, operation string, err *Error) error {
	if err == nil {
		s.recorder.RecordAuth(operation, "success")
		return nil
	}
	s.recorder.RecordAuth(operation, string(err.Kind))
	switch err.Kind {
	case KindInternal:
		s.logger.Error(ctx, operation+" failed", "error", err.Cause)
	case KindUnauthorized:
		s.logger.Warn(ctx, operation+" rejected", "reason", err.Reason)
	default:
		s.logger.Info(ctx, operation+" rejected", "kind", string(err.Kind))
	}
	return err
}

// dummy is a hash to verify against when the email is unknown, so both
// failure paths cost one hash computation.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func tokenReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, common.ErrWrongTokenType):
		return ReasonWrongType
	}
	return ReasonMalformed
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (s *AuthService) checkCredentials(email, password string) []string {
	problems := validation.Struct(credentials{Email: email, Password: password})
	if len(password) > s.hasher.MaxPasswordBytes() {
		problems = append(problems, s.passwordTooLong())
	}
	return problems
}

func (s *AuthService) passwordTooLong() string {
	return fmt.Sprintf("Password must be at most %d bytes", s.hasher.MaxPasswordBytes())
}
