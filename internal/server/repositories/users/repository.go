package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/server/models"
)

// Repository persists accounts. Token lookups take the hashed token and only
// match while the stored expiry is after now; a miss is common.ErrorNotFound
// whether the token is unknown or expired.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)

	SetPasswordResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByPasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	ResetPassword(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) (*models.User, error)
}
