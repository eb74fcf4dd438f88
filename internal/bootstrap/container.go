// Package bootstrap wires configuration, infrastructure and application
// services into one container shared by the server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinvoicing "github.com/JIGLE/proman-sub000/internal/application/invoicing"
	appprinting "github.com/JIGLE/proman-sub000/internal/application/printing"
	appreport "github.com/JIGLE/proman-sub000/internal/application/report"
	appsaft "github.com/JIGLE/proman-sub000/internal/application/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/cache"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/logger"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/persistence"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/printing"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/storage"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags "-X ...bootstrap.Version=..."
var Version = "dev"

const slowQueryThreshold = 200 * time.Millisecond

// Options select the optional parts of the container
type Options struct {
	// Printing starts a headless Chrome renderer for invoice PDFs
	Printing bool
	// Locks connects the scheduler lock backend
	Locks bool
}

// Container holds the wired dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Clock         shared.Clock
	DB            *persistence.Database
	Repos         *persistence.Repositories
	Tracer        *telemetry.TracerProvider
	Meter         *telemetry.MeterProvider
	Logs          *telemetry.LoggerProvider
	Profiler      *telemetry.Profiler
	Metrics       *telemetry.BusinessMetrics
	Locker        cache.Locker
	LateFeePolicy invoicing.LateFeeConfig

	Invoices  *appinvoicing.InvoiceService
	SAFT      *appsaft.ExportService
	Analytics *appreport.AnalyticsService
	// Printer is nil unless Options.Printing was set
	Printer *appprinting.InvoicePrintService

	closers []func() error
}

// New builds the container. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (_ *Container, err error) {
	c := &Container{
		Config: cfg,
		Logger: log,
		Clock:  shared.ZonedClock{Location: cfg.App.Location()},
	}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
		}
	}()

	c.LateFeePolicy, err = cfg.LateFee.Policy()
	if err != nil {
		return nil, fmt.Errorf("late fee policy: %w", err)
	}

	c.Tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, Version, log)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error { return c.Tracer.Shutdown(context.Background()) })

	if err = c.wireSignals(ctx, cfg, log); err != nil {
		return nil, err
	}
	log = c.Logger

	c.DB, err = persistence.NewDatabase(cfg.Database, log, persistence.Options{
		LogLevel:  logger.GormLevel(cfg.Log.Level),
		SlowQuery: slowQueryThreshold,
		LogSQL:    cfg.App.Env != "production",
	})
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	c.closers = append(c.closers, c.DB.Close)

	if c.Tracer.Enabled() && cfg.Telemetry.DBTraceEnabled {
		if err = telemetry.RegisterDBTracing(c.DB.DB, c.DB.Driver, cfg.Telemetry.DBLogFullSQL, log); err != nil {
			return nil, err
		}
	}

	c.Repos = persistence.NewRepositories(c.DB.DB)

	archive, err := newArchive(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	c.Invoices = appinvoicing.NewInvoiceService(c.Repos.Invoices, c.Repos.Leases, c.Clock, log.Named("invoicing"))
	c.Invoices.SetBusinessMetrics(c.Metrics)
	c.SAFT = appsaft.NewExportService(
		c.Repos.Invoices,
		c.Repos.Tenants,
		c.Repos.Properties,
		archive,
		cfg.SAFT.Company(),
		c.Clock,
		log.Named("saft"),
	)
	c.SAFT.SetBusinessMetrics(c.Metrics)
	c.Analytics = appreport.NewAnalyticsService(appreport.Repositories{
		Properties:  c.Repos.Properties,
		Tenants:     c.Repos.Tenants,
		Leases:      c.Repos.Leases,
		Receipts:    c.Repos.Receipts,
		Expenses:    c.Repos.Expenses,
		Maintenance: c.Repos.Maintenance,
	}, c.Clock, log.Named("analytics"))

	if opts.Printing {
		if err = c.wirePrinting(cfg.Printing, cfg.SAFT); err != nil {
			return nil, err
		}
	}

	if opts.Locks {
		locker, closeLocker := cache.NewLocker(ctx, cfg.Redis, log)
		c.Locker = locker
		c.closers = append(c.closers, closeLocker)
	}

	return c, nil
}

// wireSignals starts profiling, metric export and log export. With log
// export on, c.Logger mirrors entries to the collector.
func (c *Container) wireSignals(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var err error
	c.Profiler, err = telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, c.Profiler.Stop)

	c.Meter, err = telemetry.NewMeterProvider(ctx, cfg.Telemetry, Version, log)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, func() error { return c.Meter.Shutdown(context.Background()) })
	c.Metrics, err = telemetry.NewBusinessMetrics(c.Meter.Meter(telemetry.MeterName))
	if err != nil {
		return fmt.Errorf("business metrics: %w", err)
	}

	c.Logs, err = telemetry.NewLoggerProvider(ctx, cfg.Telemetry, Version, log)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, func() error { return c.Logs.Shutdown(context.Background()) })
	c.Logger = c.Logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	return nil
}

func (c *Container) wirePrinting(cfg config.PrintingConfig, saftCfg config.SAFTConfig) error {
	tmpl, err := printing.NewInvoiceTemplate(printing.DefaultLocale)
	if err != nil {
		return fmt.Errorf("invoice template: %w", err)
	}
	renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		DefaultTimeout: cfg.Timeout,
		ExecPath:       cfg.ChromePath,
		NoSandbox:      true,
		Logger:         c.Logger.Named("chromedp"),
	})
	c.closers = append(c.closers, renderer.Close)
	c.Printer = appprinting.NewInvoicePrintService(
		c.Invoices,
		c.Repos.Tenants,
		c.Repos.Properties,
		tmpl,
		renderer,
		saftCfg.Company(),
		c.Logger.Named("printing"),
	)
	return nil
}

// newArchive returns S3 storage when enabled, otherwise an in-memory store
func newArchive(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (appsaft.ArchiveStorage, error) {
	if !cfg.Enabled {
		log.Info("object storage disabled, SAF-T exports are kept in memory")
		return storage.NewMemoryArchiveStorage("memory://saft"), nil
	}
	s3Store, err := storage.NewS3ArchiveStorage(cfg, log.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object storage bucket: %w", err)
	}
	return s3Store, nil
}

// Close releases resources in reverse order of acquisition
func (c *Container) Close(_ context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
