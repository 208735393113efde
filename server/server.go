package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MediCall/config"
	"MediCall/jobs"
	"MediCall/middleware"
	"MediCall/migrations"
	"MediCall/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 15 * time.Second

type Options struct {
	Config *config.Config

	MigrationEnabled bool
	MigrationHandler func(ctx context.Context, app *App) error

	JobsEnabled bool
	JobsHandler func(app *App) (stop func(), err error)

	// WebServerPreHandler runs after the default middleware and before the routes.
	WebServerPreHandler func(r *gin.Engine)
}

func GetDefaultOptions(cfg *config.Config) Options {
	return Options{
		Config:           cfg,
		MigrationEnabled: cfg.MigrationsEnabled && !cfg.UseMemoryStore(),
		MigrationHandler: RunMigrations,
		JobsEnabled:      cfg.JobsEnabled,
		JobsHandler:      StartReminders,
	}
}

func RunMigrations(ctx context.Context, app *App) error {
	if app.DB == nil {
		return nil
	}
	return migrations.Run(ctx, app.DB)
}

func StartReminders(app *App) (func(), error) {
	scheduler, err := jobs.NewScheduler(app.Config.ReminderSchedule, app.Location, app.Reminders)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler.Stop, nil
}

// Engine builds the gin router with middleware and every route mounted.
func (a *App) Engine(pre func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(a.Config.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger(), middleware.Metrics())
	if pre != nil {
		pre(r)
	}
	if a.LocalFiles != nil {
		r.Static(a.LocalFiles.URLPrefix(), a.LocalFiles.Dir())
	}

	opts := routes.Options{
		Tokens:      a.Tokens,
		Revocations: a.Revoked,
		CORSOrigins: a.Config.CORSOrigins,
		Accounts:    a.Handlers.Auth,
	}
	if a.Config.RateLimitPerSecond > 0 {
		opts.Limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(a.Config.RateLimitPerSecond),
			Burst: a.Config.RateLimitBurst,
		})
	}
	if a.Config.WebhookRateLimitPerSecond > 0 {
		opts.WebhookLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(a.Config.WebhookRateLimitPerSecond),
			Burst: a.Config.WebhookRateLimitBurst,
		})
	}
	routes.Routes(r, a.Handlers, opts)
	return r
}

/*
* Build the app from the config
* Apply migrations and start jobs when enabled
* Serve HTTP until SIGINT or SIGTERM
* Drain in-flight requests then release connections
 */
func Start(opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := Build(ctx, opts.Config)
	if err != nil {
		return err
	}
	defer app.Close()

	if opts.MigrationEnabled && opts.MigrationHandler != nil {
		if err := opts.MigrationHandler(ctx, app); err != nil {
			return err
		}
	}
	if opts.JobsEnabled && opts.JobsHandler != nil {
		stopJobs, err := opts.JobsHandler(app)
		if err != nil {
			return err
		}
		defer stopJobs()
	}

	srv := &http.Server{
		Addr:              ":" + opts.Config.Port,
		Handler:           app.Engine(opts.WebServerPreHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", opts.Config.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
