// Package rest is the HTTP API: routing, the session cookie, the response
// envelope and the translation of service errors into status codes.
package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/dmitrijs2005/tasktrack/internal/server/limiter"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/dmitrijs2005/tasktrack/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	ResendVerification(ctx context.Context, userID string) (bool, error)
	VerifyEmail(ctx context.Context, plainToken string) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, in services.ChangePasswordInput) error
	ForgotPassword(ctx context.Context, in services.ForgotPasswordInput) (string, error)
	ResetPassword(ctx context.Context, plainToken string, in services.ResetPasswordInput) error
	Details(ctx context.Context, userID string) (*models.User, error)
}

type TaskService interface {
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Add(ctx context.Context, userID string, in services.AddTaskInput) (*models.Task, error)
	Update(ctx context.Context, userID, taskID string, in services.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type Handler struct {
	users        UserService
	tasks        TaskService
	limiter      limiter.Limiter
	logger       logging.Logger
	cookieSecure bool
	now          func() time.Time
}

func NewHandler(us UserService, ts TaskService, l limiter.Limiter, logger logging.Logger, cookieSecure bool) *Handler {
	return &Handler{
		users:        us,
		tasks:        ts,
		limiter:      l,
		logger:       logger.With("module", "rest"),
		cookieSecure: cookieSecure,
		now:          time.Now,
	}
}
