// Package server wires the configured components together and runs the HTTP
// API and the gRPC health service until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tasktrack/internal/logging"
	"github.com/dmitrijs2005/tasktrack/internal/server/config"
	"github.com/dmitrijs2005/tasktrack/internal/server/limiter"
	"github.com/dmitrijs2005/tasktrack/internal/server/mailer"
	"github.com/dmitrijs2005/tasktrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasktrack/internal/server/rest"
	"github.com/dmitrijs2005/tasktrack/internal/server/services"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/tasktrack/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	httpServer   *rest.Server
	healthServer *gs.HealthServer
	closers      []func() error
}

var sqlOpen = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	transport, err := mailer.NewTransport(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	lim, closeLimiter, err := newLimiter(c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("limiter init error: %w", err)
	}

	us := services.NewUserService(db, m, c, mailer.NewNotifier(transport, c, logger))
	ts := services.NewTaskService(db, m)

	if c.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := rest.NewHandler(us, ts, lim, logger, c.CookieSecure)
	router, err := rest.NewRouter(h, db, c.CORSOrigin, c.TrustedProxies, logger)
	if err != nil {
		closeLimiter()
		db.Close()
		return nil, fmt.Errorf("router init error: %w", err)
	}

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		httpServer:   rest.NewServer(c.HTTPAddr, router, logger),
		healthServer: gs.NewHealthServer(c.HealthAddrGRPC, logger),
		closers:      []func() error{closeLimiter, db.Close},
	}, nil
}

// newLimiter counts login failures in redis when a URL is configured and in
// process memory otherwise.
func newLimiter(c *config.Config) (limiter.Limiter, func() error, error) {
	if c.LimiterRedisURL == "" {
		return limiter.NewMemory(c.LoginMaxAttempts, c.LoginWindow), func() error { return nil }, nil
	}
	r, err := limiter.NewRedisFromURL(c.LimiterRedisURL, c.LoginMaxAttempts, c.LoginWindow)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

// start runs r and cancels the whole app if it fails.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", app.httpServer)
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc_health", app.healthServer)
	}()

	wg.Wait()

	for _, c := range app.closers {
		if err := c(); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
