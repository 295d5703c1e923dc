// Package services contains server-side business logic. UserService drives the
// account lifecycle (registration, email verification, login, password change
// and reset); TaskService is the per-user task store front.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/dbx"
	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/dmitrijs2005/tasktrack/internal/server/auth"
	"github.com/dmitrijs2005/tasktrack/internal/server/config"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/repomanager"
)

// Notifier delivers the links carrying opaque tokens. Sends are awaited.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=256"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=256"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	NewPassword        string `json:"newPassword" validate:"required,min=8,max=256"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required"`
}

// Session is the result of a successful login.
type Session struct {
	Token string
	TTL   time.Duration
	User  *models.User
}

// UserService provides the account lifecycle operations. All of them return
// *apperr.Error values so the transport can map them without inspection.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *auth.SessionIssuer
	notifier    Notifier
	now         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, n Notifier) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    auth.NewSessionIssuer(cfg.SecretKey, cfg.SessionTTL),
		notifier:    n,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and emails its verification link.
// Input problems are reported before anything is written.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := checkInput(in, MsgFieldRequired); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation(MsgPasswordMismatch)
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	token, err := auth.NewOpaqueToken(s.now())
	if err != nil {
		return nil, apperr.Internal("", err)
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, in.Email)
		if err == nil {
			return apperr.Conflict(MsgEmailExists)
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		created, err = repo.Create(ctx, &models.User{
			Name:                    in.Name,
			Email:                   in.Email,
			PasswordHash:            passwordHash,
			EmailVerificationToken:  &token.Hash,
			EmailVerificationExpiry: &token.ExpiresAt,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			return apperr.Conflict(MsgEmailExists)
		}
		return err
	})
	if err != nil {
		return nil, apperr.From(err)
	}

	if err := s.notifier.SendVerificationEmail(ctx, created.Email, token.Plain); err != nil {
		return nil, apperr.Internal("", err)
	}

	return created, nil
}

// ResendVerification issues a fresh verification token, replacing the previous
// one, and emails it. It reports false when the account is already verified.
func (s *UserService) ResendVerification(ctx context.Context, userID string) (bool, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return false, userLookupError(err)
	}
	if user.Verified {
		return false, nil
	}

	token, err := auth.NewOpaqueToken(s.now())
	if err != nil {
		return false, apperr.Internal("", err)
	}

	if err := repo.SetVerificationToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// verified in the meantime
			return false, nil
		}
		return false, apperr.Internal("", err)
	}

	if err := s.notifier.SendVerificationEmail(ctx, user.Email, token.Plain); err != nil {
		return false, apperr.Internal("", err)
	}
	return true, nil
}

// VerifyEmail consumes a verification token. Unknown and expired tokens give
// the same error and change nothing.
func (s *UserService) VerifyEmail(ctx context.Context, plainToken string) (*models.User, error) {
	if plainToken == "" {
		return nil, apperr.Auth(MsgInvalidToken)
	}

	user, err := s.repomanager.Users(s.db).ConsumeVerificationToken(ctx, auth.HashToken(plainToken), s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.Auth(MsgInvalidToken)
		}
		return nil, apperr.Internal("", err)
	}
	return user, nil
}

// Login checks the credentials and mints a session token. An unknown email
// and a wrong password are reported identically.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)

	if err := checkInput(in, MsgFieldsRequired); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.Auth(MsgInvalidCredentials)
		}
		return nil, apperr.Internal("", err)
	}

	if !auth.CheckPassword(in.Password, user.PasswordHash) {
		return nil, apperr.Auth(MsgInvalidCredentials)
	}

	token, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal("", err)
	}

	return &Session{Token: token, TTL: s.sessions.TTL(), User: user}, nil
}

// Authenticate resolves a session token to its still existing user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Auth(MsgUnauthorized)
	}

	identity, err := s.sessions.Verify(token)
	if err != nil {
		return nil, apperr.Auth(MsgInvalidSession)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.Auth(MsgInvalidSession)
		}
		return nil, apperr.Internal("", err)
	}
	return user, nil
}

// ChangePassword replaces the password of a signed-in user. The session stays
// valid.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := checkInput(in, MsgFieldsRequired); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}

	if !auth.CheckPassword(in.OldPassword, user.PasswordHash) {
		return apperr.Auth(MsgWrongPassword)
	}
	if in.OldPassword == in.NewPassword {
		return apperr.Validation(MsgSamePassword)
	}

	passwordHash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	if _, err := repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return apperr.Internal("", err)
	}
	return nil
}

// ForgotPassword stores a reset token for the account and emails its link.
// It returns the address the link went to.
func (s *UserService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) (string, error) {
	in.Email = normalizeEmail(in.Email)

	if err := checkInput(in, MsgEmailRequired); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", apperr.Auth(MsgUnknownEmail)
		}
		return "", apperr.Internal("", err)
	}

	token, err := auth.NewOpaqueToken(s.now())
	if err != nil {
		return "", apperr.Internal("", err)
	}

	if err := repo.SetPasswordResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return "", apperr.Internal("", err)
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, user.Email, token.Plain); err != nil {
		return "", apperr.Internal("", err)
	}
	return user.Email, nil
}

// ResetPassword sets a new password using an emailed reset token. The token is
// cleared in the same statement, so it works at most once.
func (s *UserService) ResetPassword(ctx context.Context, plainToken string, in ResetPasswordInput) error {
	if err := checkInput(struct {
		NewPassword        string `validate:"required"`
		ConfirmNewPassword string `validate:"required"`
	}{in.NewPassword, in.ConfirmNewPassword}, MsgFieldsRequired); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	tokenHash := auth.HashToken(plainToken)
	now := s.now()

	if _, err := repo.GetByPasswordResetToken(ctx, tokenHash, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperr.Auth(MsgInvalidToken)
		}
		return apperr.Internal("", err)
	}

	if in.NewPassword != in.ConfirmNewPassword {
		return apperr.Auth(MsgPasswordMismatch)
	}
	if err := checkInput(in, MsgFieldsRequired); err != nil {
		return err
	}

	passwordHash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	if _, err := repo.ResetPassword(ctx, tokenHash, now, passwordHash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperr.Auth(MsgInvalidToken)
		}
		return apperr.Internal("", err)
	}
	return nil
}

// Details returns the signed-in user's profile.
func (s *UserService) Details(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// SessionTTL is the lifetime of tokens minted by Login.
func (s *UserService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

func userLookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return apperr.NotFound(MsgUserMissing)
	}
	return apperr.Internal("", err)
}

func hashPassword(password string) (string, error) {
	h, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordLength) {
			return "", apperr.Validation(MsgPasswordLength)
		}
		return "", apperr.Internal("", err)
	}
	return h, nil
}
