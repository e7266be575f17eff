// Package services contains the application services exposed through the
// HTTP API: account/session management and document management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/cryptox"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/dbx"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/auth"
	sc "github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/repomanager"
)

// UserService implements login, account CRUD, and the session-marker
// operations the device-side guard reads and writes.
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hub    *hub.Hub
	config *sc.Config
	logger logging.Logger
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, h *hub.Hub, config *sc.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		repos:  repos,
		hub:    h,
		config: config,
		logger: logger.With("module", "user_service"),
	}
}

// LoginResult carries everything the device needs after a successful login:
// its profile, its fresh session token, and a bearer token for the API.
type LoginResult struct {
	User        *models.User `json:"user"`
	SessionID   string       `json:"sessionId"`
	AccessToken string       `json:"accessToken"`
}

// Login verifies the password, mints a fresh session token and overwrites the
// account's authoritative session marker with it. The overwrite is what
// invalidates any session running on another device; affected devices learn
// about it through the change feed or their next validity check.
func (s *UserService) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if !cryptox.VerifyPassword(password, user.Salt, user.Verifier) {
		return nil, common.ErrorUnauthorized
	}

	sessionID := uuid.NewString()
	if err := s.repos.Users(s.db).SetCurrentSession(ctx, user.ID, sessionID); err != nil {
		return nil, fmt.Errorf("session write: %w", err)
	}
	user.CurrentSessionID = sessionID
	user.Status = "active"

	accessToken, err := auth.GenerateToken(user.ID, []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	s.notifyUserUpdated(ctx, user)

	return &LoginResult{User: user, SessionID: sessionID, AccessToken: accessToken}, nil
}

// GetCurrentSession is the point read the validity check performs.
func (s *UserService) GetCurrentSession(ctx context.Context, userID string) (string, error) {
	return s.repos.Users(s.db).GetCurrentSession(ctx, userID)
}

// SetCurrentSession is the advisory point write the login flow performs when
// the device generated its token locally (offline-optimistic login path).
func (s *UserService) SetCurrentSession(ctx context.Context, userID string, sessionID string) error {
	if err := s.repos.Users(s.db).SetCurrentSession(ctx, userID, sessionID); err != nil {
		return err
	}
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err == nil {
		s.notifyUserUpdated(ctx, user)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repos.Users(s.db).List(ctx)
}

// Register provisions an account with argon2id-derived credentials.
func (s *UserService) Register(ctx context.Context, user *models.User, password []byte) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = "active"
	}
	user.Salt = common.GenerateRandByteArray(32)
	user.Verifier = cryptox.MakeVerifier(cryptox.DeriveKey(password, user.Salt))

	return s.repos.Users(s.db).Create(ctx, user)
}

func (s *UserService) Update(ctx context.Context, user *models.User) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Users(tx).Update(ctx, user)
	})
	if err != nil {
		return err
	}
	s.notifyUserUpdated(ctx, user)
	return nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repos.Users(s.db).Delete(ctx, id)
}

// notifyUserUpdated pushes the updated record to the user's own topic. The
// session guard on each of the user's devices treats this as its lowest
// latency recheck trigger. Failures only get logged: the poll path will
// catch up within one interval anyway.
func (s *UserService) notifyUserUpdated(ctx context.Context, user *models.User) {
	msg, err := events.Marshal(events.KindUserUpdated, user)
	if err != nil {
		s.logger.Warn(ctx, "encode user event failed", "error", err)
		return
	}
	s.hub.Broadcast("users:"+user.ID, msg)
}
