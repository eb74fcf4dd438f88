// Command server runs the Proman HTTP API.
//
//	@title			Proman API
//	@version		1.0
//	@description	Property management API: invoices, late fees, SAF-T PT export and portfolio analytics.
//
//	@license.name	MIT
//
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/JIGLE/proman-sub000/docs"
	"github.com/JIGLE/proman-sub000/internal/bootstrap"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/auth"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/logger"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/scheduler"
	"github.com/JIGLE/proman-sub000/internal/interfaces/http/handler"
	"github.com/JIGLE/proman-sub000/internal/interfaces/http/middleware"
	"github.com/JIGLE/proman-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting Proman",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", bootstrap.Version),
		zap.String("database", cfg.Database.Driver),
		zap.String("timezone", cfg.App.Timezone),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{
		Printing: true,
		Locks:    cfg.Scheduler.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			log.Warn("Error while releasing resources", zap.Error(err))
		}
	}()
	log = container.Logger

	var lateFees *scheduler.DailyTrigger
	if cfg.Scheduler.Enabled {
		lateFees, err = startLateFeeScheduler(ctx, cfg, container, log)
		if err != nil {
			log.Fatal("Failed to start late-fee scheduler", zap.Error(err))
		}
	} else {
		log.Info("Late-fee scheduler disabled")
	}

	engine, err := router.NewEngine(router.EngineOptions{
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     container.Tracer.Enabled(),
		Logger:      log,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	var jobs handler.JobReporter
	if lateFees != nil {
		jobs = lateFees
	}
	engine.GET(router.HealthPath, handler.NewHealthHandler(container.DB, jobs, bootstrap.Version).Check)

	if cfg.JWT.AllowUserHeader {
		log.Warn("X-User-ID authentication is enabled; do not expose this instance publicly")
	}
	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Validator:       auth.NewJWTService(cfg.JWT),
		AllowUserHeader: cfg.JWT.AllowUserHeader,
		Logger:          log,
	})

	var printer handler.InvoicePrinter
	if container.Printer != nil {
		printer = container.Printer
	}
	router.RegisterSwagger(engine, middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, authMiddleware))

	router.NewRouter(engine, router.WithAuth(authMiddleware, middleware.TraceUser())).
		Register(handler.NewInvoiceHandler(container.Invoices, printer, container.LateFeePolicy, cfg.App.Location())).
		Register(handler.NewSAFTHandler(container.SAFT)).
		Register(handler.NewAnalyticsHandler(container.Analytics)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server stopped unexpectedly", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if lateFees != nil {
		if err := lateFees.Stop(shutdownCtx); err != nil {
			log.Warn("Late-fee scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func startLateFeeScheduler(ctx context.Context, cfg *config.Config, c *bootstrap.Container, log *zap.Logger) (*scheduler.DailyTrigger, error) {
	schedCfg := scheduler.Config{
		Hour:          cfg.Scheduler.LateFeeHour,
		Minute:        cfg.Scheduler.LateFeeMinute,
		CheckInterval: cfg.Scheduler.CheckInterval,
		JobTimeout:    cfg.Scheduler.JobTimeout,
		LockTTL:       cfg.Scheduler.LockTTL,
		Location:      cfg.App.Location(),
	}
	job := scheduler.NewLateFeeJob(c.Invoices, c.LateFeePolicy, log.Named("late-fees"))
	trigger, err := scheduler.NewDailyTrigger(schedCfg, job, c.Locker, c.Clock, log.Named("scheduler"))
	if err != nil {
		return nil, err
	}
	if err := trigger.Start(ctx); err != nil {
		return nil, err
	}
	return trigger, nil
}
