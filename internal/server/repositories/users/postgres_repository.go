// Package users stores user accounts in PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/dbx"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, verified,
		email_verification_token, email_verification_expiry,
		password_reset_token, password_reset_expiry,
		created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Verified,
		&u.EmailVerificationToken, &u.EmailVerificationExpiry,
		&u.PasswordResetToken, &u.PasswordResetExpiry,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Create inserts the user, assigning an id when it has none. A duplicate
// email (case-insensitive) yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, name, email, password_hash, email_verification_token, email_verification_expiry)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING verified, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.EmailVerificationToken, user.EmailVerificationExpiry,
	).Scan(&user.Verified, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// SetVerificationToken replaces any earlier verification token. It only
// applies to unverified accounts.
func (r *PostgresRepository) SetVerificationToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query :=
		`UPDATE users
		 SET email_verification_token = $2, email_verification_expiry = $3, updated_at = NOW()
		 WHERE id = $1 AND verified = FALSE`

	return dbx.RequireAffected(r.db.ExecContext(ctx, query, id, tokenHash, expiresAt))
}

// ConsumeVerificationToken marks the matching account verified and clears
// the token pair in one statement.
func (r *PostgresRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	query :=
		`UPDATE users
		 SET verified = TRUE, email_verification_token = NULL, email_verification_expiry = NULL, updated_at = NOW()
		 WHERE email_verification_token = $1 AND email_verification_expiry > $2
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
}

func (r *PostgresRepository) SetPasswordResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query :=
		`UPDATE users
		 SET password_reset_token = $2, password_reset_expiry = $3, updated_at = NOW()
		 WHERE id = $1`

	return dbx.RequireAffected(r.db.ExecContext(ctx, query, id, tokenHash, expiresAt))
}

func (r *PostgresRepository) GetByPasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE password_reset_token = $1 AND password_reset_expiry > $2`
	return scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
}

// ResetPassword stores the new hash and clears the reset pair, but only while
// the token still matches and is unexpired. A concurrent second use finds no
// row and gets common.ErrorNotFound.
func (r *PostgresRepository) ResetPassword(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET password_hash = $3, password_reset_token = NULL, password_reset_expiry = NULL, updated_at = NOW()
		 WHERE password_reset_token = $1 AND password_reset_expiry > $2
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now, passwordHash))
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET password_hash = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id, passwordHash))
}
