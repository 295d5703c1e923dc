package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/dbx"
	"github.com/dmitrijs2005/tasktrack/internal/server/config"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	err   error // returned by every call when set
	calls int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) put(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, x := range f.byID {
		if strings.EqualFold(x.Email, u.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) SetVerificationToken(_ context.Context, id, hash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok || u.Verified {
		return common.ErrorNotFound
	}
	u.EmailVerificationToken, u.EmailVerificationExpiry = &hash, &exp
	return nil
}

func (f *fakeUsersRepo) ConsumeVerificationToken(_ context.Context, hash string, now time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == hash && u.EmailVerificationExpiry.After(now) {
			u.Verified = true
			u.EmailVerificationToken, u.EmailVerificationExpiry = nil, nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) SetPasswordResetToken(_ context.Context, id, hash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordResetToken, u.PasswordResetExpiry = &hash, &exp
	return nil
}

func (f *fakeUsersRepo) findReset(hash string, now time.Time) *models.User {
	for _, u := range f.byID {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == hash && u.PasswordResetExpiry.After(now) {
			return u
		}
	}
	return nil
}

func (f *fakeUsersRepo) GetByPasswordResetToken(_ context.Context, hash string, now time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := f.findReset(hash, now)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) ResetPassword(_ context.Context, hash string, now time.Time, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := f.findReset(hash, now)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordResetToken, u.PasswordResetExpiry = nil, nil
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	cp := *u
	return &cp, nil
}

type fakeTasksRepo struct {
	items []*models.Task
	err   error
}

func (f *fakeTasksRepo) ListByUser(_ context.Context, userID string) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Task, 0)
	for _, t := range f.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasksRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t.ID = uuid.NewString()
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTasksRepo) find(id, userID string) *models.Task {
	for _, t := range f.items {
		if t.ID == id && t.UserID == userID {
			return t
		}
	}
	return nil
}

func (f *fakeTasksRepo) Update(_ context.Context, id, userID string, p models.TaskPatch) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := f.find(id, userID)
	if t == nil {
		return nil, common.ErrorNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t, nil
}

func (f *fakeTasksRepo) Delete(_ context.Context, id, userID string) error {
	if f.err != nil {
		return f.err
	}
	for i, t := range f.items {
		if t.ID == id && t.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository              { return m.t }

type sentMail struct {
	kind, to, token string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (n *fakeNotifier) SendVerificationEmail(_ context.Context, to, token string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{"verify", to, token})
	return nil
}

func (n *fakeNotifier) SendPasswordResetEmail(_ context.Context, to, token string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{"reset", to, token})
	return nil
}

func (n *fakeNotifier) last() sentMail {
	return n.sent[len(n.sent)-1]
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: "k", SessionTTL: time.Hour}
}

func newUserService(t *testing.T, db *sql.DB, u *fakeUsersRepo, n *fakeNotifier) *UserService {
	t.Helper()
	return NewUserService(db, &fakeRepoManager{u: u, t: &fakeTasksRepo{}}, testConfig(), n)
}
