package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "task-manager.com/task-manager/internal/configs"
	httpapi "task-manager.com/task-manager/internal/http"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
	"task-manager.com/task-manager/internal/http/validators"
	"task-manager.com/task-manager/internal/logging"
	"task-manager.com/task-manager/internal/ratelimit"
	"task-manager.com/task-manager/internal/services"
	"task-manager.com/task-manager/internal/tracing"
)

const serviceName = "task-manager"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task manager HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tp, err := tracing.NewProvider(serviceName, cfg.JaegerEndpoint)
		if err != nil {
			return err
		}
		tracer := tp.Tracer(serviceName)

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}

		limiter, closeLimiter, err := newLimiter(cfg)
		if err != nil {
			return err
		}
		defer closeLimiter()

		taskService := services.NewTaskService(st.tasks, st.users, tracer)
		dashboardService := services.NewDashboardService(st.tasks, tracer)
		userService := services.NewUserService(st.users, st.tasks, tracer)

		e := echo.New()
		e.HideBanner = true
		e.Validator = validators.NewRequestValidator()
		e.Use(middleware.RequestLogger)
		e.Use(middleware.Tracing(tracer))
		e.Use(middleware.RateLimiter(limiter))

		handler := httpapi.NewHandler(taskService, dashboardService, userService, st.tasks, cfg.StoreDriver)
		httpapi.Register(e, handler, middleware.Authenticate(st.users))

		go func() {
			logging.Logger.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Logger.WithError(err).Error("server stopped")
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		if err := st.close(shutdownCtx); err != nil {
			logging.Logger.WithError(err).Warn("closing store failed")
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logging.Logger.WithError(err).Warn("tracer shutdown failed")
		}

		logging.Logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

// newLimiter returns the per-IP limiter: shared through Redis when enabled,
// in process memory otherwise.
func newLimiter(cfg config.Config) (ratelimit.Limiter, func(), error) {
	if !cfg.RedisEnabled {
		return ratelimit.NewMemoryLimiter(cfg.RateLimit, time.Minute), func() {}, nil
	}

	redisClient, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}

	redisLimiter := ratelimit.NewRedisLimiter(redisClient, cfg.RedisRateLimitPrefix, cfg.RateLimit, time.Minute)
	return ratelimit.NewBreakerLimiter(redisLimiter), redisClient.Close, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
