package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/dmitrijs2005/tasktrack/internal/server/auth"
	"github.com/dmitrijs2005/tasktrack/internal/server/services"
	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps request bodies; the largest legitimate one is a task
// with a 1000 character description.
const maxBodyBytes = 16 << 10

func limitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	}
	c.Next()
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

func recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, p any) {
		logger.Error(c.Request.Context(), "panic", "path", c.Request.URL.Path, "panic", p)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorEnvelope{Message: apperr.DefaultMessage})
	})
}

// requireAuth resolves the session cookie to a user and stores its identity
// in the request context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return h.wrap(func(c *gin.Context) error {
		token, _ := c.Cookie(common.SessionCookieName)

		user, err := h.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			return err
		}

		ctx := auth.WithIdentity(c.Request.Context(), auth.Identity{UserID: user.ID, Email: user.Email})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		return nil
	})
}

func identity(c *gin.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		return auth.Identity{}, apperr.Auth(services.MsgUnauthorized)
	}
	return id, nil
}
