package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/dmitrijs2005/tasktrack/internal/server/limiter"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/dmitrijs2005/tasktrack/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errNotStubbed = errors.New("not stubbed")

var testUser = &models.User{ID: "u-1", Name: "Ana", Email: "ana@x.com"}

// stubUsers authenticates the cookie value "good" as testUser; every other
// method fails unless its func is set.
type stubUsers struct {
	register       func(services.RegisterInput) (*models.User, error)
	resend         func(string) (bool, error)
	verify         func(string) (*models.User, error)
	login          func(services.LoginInput) (*services.Session, error)
	changePassword func(string, services.ChangePasswordInput) error
	forgot         func(services.ForgotPasswordInput) (string, error)
	reset          func(string, services.ResetPasswordInput) error
	details        func(string) (*models.User, error)
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	if s.register == nil {
		return nil, errNotStubbed
	}
	return s.register(in)
}

func (s *stubUsers) ResendVerification(_ context.Context, id string) (bool, error) {
	if s.resend == nil {
		return false, errNotStubbed
	}
	return s.resend(id)
}

func (s *stubUsers) VerifyEmail(_ context.Context, tok string) (*models.User, error) {
	if s.verify == nil {
		return nil, errNotStubbed
	}
	return s.verify(tok)
}

func (s *stubUsers) Login(_ context.Context, in services.LoginInput) (*services.Session, error) {
	if s.login == nil {
		return nil, errNotStubbed
	}
	return s.login(in)
}

func (s *stubUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "":
		return nil, apperr.Auth(services.MsgUnauthorized)
	case "good":
		return testUser, nil
	default:
		return nil, apperr.Auth(services.MsgInvalidSession)
	}
}

func (s *stubUsers) ChangePassword(_ context.Context, id string, in services.ChangePasswordInput) error {
	if s.changePassword == nil {
		return errNotStubbed
	}
	return s.changePassword(id, in)
}

func (s *stubUsers) ForgotPassword(_ context.Context, in services.ForgotPasswordInput) (string, error) {
	if s.forgot == nil {
		return "", errNotStubbed
	}
	return s.forgot(in)
}

func (s *stubUsers) ResetPassword(_ context.Context, tok string, in services.ResetPasswordInput) error {
	if s.reset == nil {
		return errNotStubbed
	}
	return s.reset(tok, in)
}

func (s *stubUsers) Details(_ context.Context, id string) (*models.User, error) {
	if s.details == nil {
		return nil, errNotStubbed
	}
	return s.details(id)
}

type stubTasks struct {
	list   func(string) ([]*models.Task, error)
	add    func(string, services.AddTaskInput) (*models.Task, error)
	update func(string, string, services.UpdateTaskInput) (*models.Task, error)
	delete func(string, string) error
}

func (s *stubTasks) List(_ context.Context, userID string) ([]*models.Task, error) {
	if s.list == nil {
		return nil, errNotStubbed
	}
	return s.list(userID)
}

func (s *stubTasks) Add(_ context.Context, userID string, in services.AddTaskInput) (*models.Task, error) {
	if s.add == nil {
		return nil, errNotStubbed
	}
	return s.add(userID, in)
}

func (s *stubTasks) Update(_ context.Context, userID, taskID string, in services.UpdateTaskInput) (*models.Task, error) {
	if s.update == nil {
		return nil, errNotStubbed
	}
	return s.update(userID, taskID, in)
}

func (s *stubTasks) Delete(_ context.Context, userID, taskID string) error {
	if s.delete == nil {
		return errNotStubbed
	}
	return s.delete(userID, taskID)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func newTestRouter(t *testing.T, us UserService, ts TaskService, l limiter.Limiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if l == nil {
		l = limiter.NewMemory(100, time.Minute)
	}
	h := NewHandler(us, ts, l, logging.Nop{}, true)
	r, err := NewRouter(h, stubPinger{}, "http://localhost:3000", nil, logging.Nop{})
	require.NoError(t, err)
	return r
}

type request struct {
	method, path, body string
	cookie             string
}

func do(t *testing.T, r http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	hr := httptest.NewRequest(req.method, req.path, body)
	if req.body != "" {
		hr.Header.Set("Content-Type", "application/json")
	}
	if req.cookie != "" {
		hr.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: req.cookie})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, hr)
	return rec
}

type okBody struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) okBody {
	t.Helper()
	var b okBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var b map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func doWithHeaders(t *testing.T, r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	hr := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		hr.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, hr)
	return rec
}
