package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter mounts the API under /api/v1. corsOrigin is the single browser
// origin allowed to send credentials. X-Forwarded-For is honoured only from
// trustedProxies; with none the client IP is the socket peer.
func NewRouter(h *Handler, db Pinger, corsOrigin string, trustedProxies []string, logger logging.Logger) (*gin.Engine, error) {
	router := gin.New()
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(recovery(logger), requestLogger(logger.With("module", "http")), limitBody)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{strings.TrimRight(corsOrigin, "/")}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler(db))

	api := router.Group("/api/v1")
	{
		authed := h.requireAuth()

		user := api.Group("/user")
		{
			user.POST("/register", h.wrap(h.register))
			user.GET("/resend-verification-email", authed, h.wrap(h.resendVerification))
			user.POST("/verify-email/:emailToken", h.wrap(h.verifyEmail))
			user.POST("/login", h.wrap(h.login))
			user.GET("/logout", authed, h.wrap(h.logout))
			user.POST("/change-password", authed, h.wrap(h.changePassword))
			user.POST("/forgot-password", h.wrap(h.forgotPassword))
			user.POST("/reset-password/:resetToken", h.wrap(h.resetPassword))
			user.GET("/user-details", authed, h.wrap(h.userDetails))
		}

		task := api.Group("/task", authed)
		{
			task.GET("/get-all-tasks", h.wrap(h.getAllTasks))
			task.POST("/add-task", h.wrap(h.addTask))
			task.PUT("/update-task/:taskId", h.wrap(h.updateTask))
			task.DELETE("/delete-task/:taskId", h.wrap(h.deleteTask))
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, msgNotFoundPage)
	})

	return router, nil
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, envelope{
				StatusCode: http.StatusServiceUnavailable,
				Data:       gin.H{"database": "unreachable"},
				Message:    "Service is unavailable.",
			})
			return
		}
		respond(c, http.StatusOK, gin.H{"database": "ok"}, "Service is healthy.")
	}
}
