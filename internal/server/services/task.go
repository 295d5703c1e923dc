package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type AddTaskInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1000"`
	Status      string `json:"status" validate:"omitempty,oneof=pending completed"`
}

// UpdateTaskInput is a partial update; absent fields keep their value. A
// present title or description must not be blank.
type UpdateTaskInput struct {
	Title       *string `json:"title" validate:"omitnil,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Status      *string `json:"status" validate:"omitnil,oneof=pending completed"`
}

// TaskService exposes task CRUD scoped to the calling user. Tasks owned by
// someone else are indistinguishable from missing ones.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// List returns the user's tasks, oldest first. No tasks is an empty slice.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	return tasks, nil
}

func (s *TaskService) Add(ctx context.Context, userID string, in AddTaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if err := checkInput(in, MsgFieldRequired); err != nil {
		return nil, err
	}

	status := models.TaskPending
	if in.Status != "" {
		status = models.TaskStatus(in.Status)
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
	})
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, in UpdateTaskInput) (*models.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, apperr.NotFound(MsgTaskNotFound)
	}

	for _, f := range []*string{in.Title, in.Description} {
		if f == nil {
			continue
		}
		*f = strings.TrimSpace(*f)
		if *f == "" {
			return nil, apperr.Validation(MsgFieldRequired)
		}
	}

	if err := checkInput(in, MsgFieldRequired); err != nil {
		return nil, err
	}

	patch := models.TaskPatch{Title: in.Title, Description: in.Description}
	if in.Status != nil {
		st := models.TaskStatus(*in.Status)
		patch.Status = &st
	}

	task, err := s.repomanager.Tasks(s.db).Update(ctx, taskID, userID, patch)
	if err != nil {
		return nil, taskLookupError(err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return apperr.NotFound(MsgTaskNotFound)
	}

	if err := s.repomanager.Tasks(s.db).Delete(ctx, taskID, userID); err != nil {
		return taskLookupError(err)
	}
	return nil
}

func taskLookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return apperr.NotFound(MsgTaskNotFound)
	}
	return apperr.Internal("", err)
}
