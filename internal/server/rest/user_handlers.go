package rest

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/dmitrijs2005/tasktrack/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	msgRegistered       = "Registration completed successfully."
	msgVerificationSent = "Verification email sent successfully."
	msgAlreadyVerified  = "Email-ID is already verified."
	msgEmailVerified    = "Email verified successfully."
	msgLoggedIn         = "Login completed successfully."
	msgLoggedOut        = "Logout completed successfully."
	msgPasswordChanged  = "Password changed successfully."
	msgPasswordReset    = "Password reset successfully."
)

func (h *Handler) setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, token, int(ttl.Seconds()), "/", "", h.cookieSecure, true)
}

// clearSessionCookie expires the cookie now; gin writes a negative maxAge as
// Max-Age=0.
func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
}

func (h *Handler) register(c *gin.Context) error {
	var in services.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		return err
	}

	respond(c, http.StatusCreated, user, msgRegistered)
	return nil
}

func (h *Handler) resendVerification(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	sent, err := h.users.ResendVerification(c.Request.Context(), id.UserID)
	if err != nil {
		return err
	}

	msg := msgVerificationSent
	if !sent {
		msg = msgAlreadyVerified
	}
	respond(c, http.StatusOK, nil, msg)
	return nil
}

func (h *Handler) verifyEmail(c *gin.Context) error {
	user, err := h.users.VerifyEmail(c.Request.Context(), c.Param("emailToken"))
	if err != nil {
		return err
	}

	respond(c, http.StatusOK, user, msgEmailVerified)
	return nil
}

// login is throttled per client IP. The attempt is counted before the
// credentials are checked and handed back unless they turn out wrong; a
// limiter outage lets the attempt through.
func (h *Handler) login(c *gin.Context) error {
	ctx := c.Request.Context()
	ip := c.ClientIP()

	counted := false
	wait, err := h.limiter.Attempt(ctx, ip)
	switch {
	case err != nil:
		h.logger.Warn(ctx, "login limiter check failed", "error", err)
	case wait > 0:
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apperr.RateLimited(msgTooMany)
	default:
		counted = true
	}

	release := func() {
		if !counted {
			return
		}
		if lerr := h.limiter.Release(ctx, ip); lerr != nil {
			h.logger.Warn(ctx, "login limiter release failed", "error", lerr)
		}
	}

	var in services.LoginInput
	if err := bindJSON(c, &in); err != nil {
		release()
		return err
	}

	sess, err := h.users.Login(ctx, in)
	if err != nil {
		if !apperr.IsKind(err, apperr.KindAuth) {
			release()
		}
		return err
	}

	if lerr := h.limiter.Reset(ctx, ip); lerr != nil {
		h.logger.Warn(ctx, "login limiter reset failed", "error", lerr)
	}

	h.setSessionCookie(c, sess.Token, sess.TTL)
	respond(c, http.StatusOK, sess.User, msgLoggedIn)
	return nil
}

func (h *Handler) logout(c *gin.Context) error {
	if _, err := identity(c); err != nil {
		return err
	}

	h.clearSessionCookie(c)
	respond(c, http.StatusOK, nil, msgLoggedOut)
	return nil
}

func (h *Handler) changePassword(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var in services.ChangePasswordInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.Request.Context(), id.UserID, in); err != nil {
		return err
	}

	respond(c, http.StatusOK, nil, msgPasswordChanged)
	return nil
}

func (h *Handler) forgotPassword(c *gin.Context) error {
	var in services.ForgotPasswordInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	email, err := h.users.ForgotPassword(c.Request.Context(), in)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("A password reset link has been sent successfully to %s. Please check your email inbox.", email)
	respond(c, http.StatusOK, nil, msg)
	return nil
}

func (h *Handler) resetPassword(c *gin.Context) error {
	var in services.ResetPasswordInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	if err := h.users.ResetPassword(c.Request.Context(), c.Param("resetToken"), in); err != nil {
		return err
	}

	respond(c, http.StatusOK, nil, msgPasswordReset)
	return nil
}

func (h *Handler) userDetails(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	user, err := h.users.Details(c.Request.Context(), id.UserID)
	if err != nil {
		return err
	}

	respond(c, http.StatusOK, user, fmt.Sprintf("Welcome %s.", user.Name))
	return nil
}
