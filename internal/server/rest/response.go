package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/tasktrack/internal/server/apperr"
	"github.com/gin-gonic/gin"
)

const (
	msgBadBody      = "Request body must be valid JSON."
	msgBodyTooLarge = "Request body is too large."
	msgTooMany      = "Too many login attempts, Please try again later."
	msgNotFoundPage = "404 - Page not found."
)

// envelope is the body of every successful response.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respond(c *gin.Context, status int, data any, message string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, envelope{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Data:       data,
		Message:    message,
	})
}

// handlerFunc is a gin handler that reports failures by returning them.
type handlerFunc func(c *gin.Context) error

// wrap is the single place where errors become responses. Internal causes are
// logged and replaced by the generic message.
func (h *Handler) wrap(fn handlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := fn(c)
		if err == nil {
			return
		}

		e := apperr.From(err)
		if e.Kind == apperr.KindInternal {
			h.logger.Error(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err,
			)
		}
		c.AbortWithStatusJSON(e.StatusCode(), errorEnvelope{Success: false, Message: e.Message})
	}
}

// bindJSON decodes the body into dst. An empty body leaves dst zero so the
// service reports the missing fields.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Validation(msgBodyTooLarge)
	}
	return apperr.Validation(msgBadBody)
}
