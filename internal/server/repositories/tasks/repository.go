package tasks

import (
	"context"

	"github.com/dmitrijs2005/tasktrack/internal/server/models"
)

// Repository persists tasks. Every operation is scoped to the owning user; a
// task owned by someone else behaves as if it did not exist.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id, userID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id, userID string) error
}
