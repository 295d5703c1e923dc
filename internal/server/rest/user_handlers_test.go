package rest

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/dmitrijs2005/tasktrack/internal/server/limiter"
	"github.com/dmitrijs2005/tasktrack/internal/server/models"
	"github.com/dmitrijs2005/tasktrack/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Created(t *testing.T) {
	var got services.RegisterInput
	us := &stubUsers{register: func(in services.RegisterInput) (*models.User, error) {
		got = in
		return testUser, nil
	}}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodPost, path: "/api/v1/user/register",
		body: `{"name":"Ana","email":"ana@x.com","password":"secret123","confirmPassword":"secret123"}`})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, 201, body.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, msgRegistered, body.Message)
	assert.Equal(t, "secret123", got.ConfirmPassword)

	var u map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &u))
	assert.Equal(t, "u-1", u["_id"])
	assert.NotContains(t, u, "PasswordHash")
	assert.NotContains(t, u, "passwordHash")
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	us := &stubUsers{login: func(in services.LoginInput) (*services.Session, error) {
		return &services.Session{Token: "jwt-value", TTL: 12 * time.Hour, User: testUser}, nil
	}}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodPost, path: "/api/v1/user/login", body: `{"email":"ana@x.com","password":"secret123"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgLoggedIn, decode(t, rec).Message)

	raw := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(raw, common.SessionCookieName+"=jwt-value"))
	assert.Contains(t, raw, "Max-Age=43200")
	assert.Contains(t, raw, "Path=/")
	assert.Contains(t, raw, "HttpOnly")
	assert.Contains(t, raw, "Secure")
	assert.Contains(t, raw, "SameSite=Lax")
}

func TestLogout_ClearsCookie(t *testing.T) {
	r := newTestRouter(t, &stubUsers{}, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodGet, path: "/api/v1/user/logout", cookie: "good"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgLoggedOut, decode(t, rec).Message)

	raw := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(raw, common.SessionCookieName+"=;"))
	assert.Contains(t, raw, "Max-Age=0")
	assert.Contains(t, raw, "HttpOnly")

	rec = do(t, r, request{method: http.MethodGet, path: "/api/v1/user/logout"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RateLimitedAfterFailures(t *testing.T) {
	us := &stubUsers{login: func(in services.LoginInput) (*services.Session, error) {
		if in.Password == "secret123" {
			return &services.Session{Token: "t", TTL: time.Hour, User: testUser}, nil
		}
		return nil, apperr.Auth(services.MsgInvalidCredentials)
	}}
	r := newTestRouter(t, us, &stubTasks{}, limiter.NewMemory(2, 15*time.Minute))

	bad := request{method: http.MethodPost, path: "/api/v1/user/login", body: `{"email":"ana@x.com","password":"nope"}`}
	good := request{method: http.MethodPost, path: "/api/v1/user/login", body: `{"email":"ana@x.com","password":"secret123"}`}

	// a success in between resets the counter
	assert.Equal(t, http.StatusUnauthorized, do(t, r, bad).Code)
	assert.Equal(t, http.StatusOK, do(t, r, good).Code)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, bad).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, bad).Code)

	rec := do(t, r, good)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, msgTooMany, decodeErr(t, rec)["message"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestLogin_ValidationDoesNotCount(t *testing.T) {
	us := &stubUsers{login: func(in services.LoginInput) (*services.Session, error) {
		return nil, apperr.Validation(services.MsgFieldsRequired)
	}}
	r := newTestRouter(t, us, &stubTasks{}, limiter.NewMemory(1, time.Minute))

	for i := 0; i < 3; i++ {
		rec := do(t, r, request{method: http.MethodPost, path: "/api/v1/user/login", body: `{}`})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestResendVerification(t *testing.T) {
	sent := true
	us := &stubUsers{resend: func(id string) (bool, error) {
		assert.Equal(t, "u-1", id)
		return sent, nil
	}}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodGet, path: "/api/v1/user/resend-verification-email", cookie: "good"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgVerificationSent, decode(t, rec).Message)

	sent = false
	rec = do(t, r, request{method: http.MethodGet, path: "/api/v1/user/resend-verification-email", cookie: "good"})
	assert.Equal(t, msgAlreadyVerified, decode(t, rec).Message)
}

func TestVerifyEmail_PassesPathToken(t *testing.T) {
	us := &stubUsers{verify: func(tok string) (*models.User, error) {
		if tok != "abc123" {
			return nil, apperr.Auth(services.MsgInvalidToken)
		}
		return &models.User{ID: "u-1", Verified: true}, nil
	}}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodPost, path: "/api/v1/user/verify-email/abc123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgEmailVerified, decode(t, rec).Message)

	rec = do(t, r, request{method: http.MethodPost, path: "/api/v1/user/verify-email/other"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, services.MsgInvalidToken, decodeErr(t, rec)["message"])
}

func TestChangePassword_UsesIdentity(t *testing.T) {
	var gotID string
	us := &stubUsers{changePassword: func(id string, in services.ChangePasswordInput) error {
		gotID = id
		if in.OldPassword == in.NewPassword {
			return apperr.Validation(services.MsgSamePassword)
		}
		return nil
	}}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodPost, path: "/api/v1/user/change-password", cookie: "good",
		body: `{"oldPassword":"secret123","newPassword":"another123"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgPasswordChanged, decode(t, rec).Message)
	assert.Equal(t, "u-1", gotID)

	rec = do(t, r, request{method: http.MethodPost, path: "/api/v1/user/change-password", cookie: "good",
		body: `{"oldPassword":"same","newPassword":"same"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	us := &stubUsers{
		forgot: func(in services.ForgotPasswordInput) (string, error) {
			return "ana@x.com", nil
		},
		reset: func(tok string, in services.ResetPasswordInput) error {
			if tok != "t0k" {
				return apperr.Auth(services.MsgInvalidToken)
			}
			return nil
		},
	}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodPost, path: "/api/v1/user/forgot-password", body: `{"email":"ana@x.com"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A password reset link has been sent successfully to ana@x.com. Please check your email inbox.", decode(t, rec).Message)

	body := `{"newPassword":"brandnew1","confirmNewPassword":"brandnew1"}`
	rec = do(t, r, request{method: http.MethodPost, path: "/api/v1/user/reset-password/t0k", body: body})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, msgPasswordReset, decode(t, rec).Message)

	rec = do(t, r, request{method: http.MethodPost, path: "/api/v1/user/reset-password/used", body: body})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserDetails_Welcome(t *testing.T) {
	us := &stubUsers{details: func(id string) (*models.User, error) { return testUser, nil }}
	r := newTestRouter(t, us, &stubTasks{}, nil)

	rec := do(t, r, request{method: http.MethodGet, path: "/api/v1/user/user-details", cookie: "good"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome Ana.", decode(t, rec).Message)
}
