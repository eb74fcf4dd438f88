package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/migration"
	"github.com/JIGLE/proman-sub000/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{Name: "proman", Env: "test", Timezone: "Europe/Lisbon"},
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "proman.db"),
		},
		Log: config.LogConfig{Level: "warn"},
		LateFee: config.LateFeeConfig{
			Enabled:         true,
			GracePeriodDays: 5,
			PercentageRate:  "5",
			FlatFee:         "10",
		},
		SAFT: config.SAFTConfig{
			TaxRegistrationNumber: "508332745",
			CompanyName:           "Proman Lda",
			City:                  "Lisboa",
			PostalCode:            "1100-053",
			Country:               "PT",
		},
	}
}

func TestNew_WiresServicesOnSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	log := zaptest.NewLogger(t)
	c, err := New(ctx, cfg, log, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close(ctx)) })

	assert.NotNil(t, c.Invoices)
	assert.NotNil(t, c.SAFT)
	assert.NotNil(t, c.Analytics)
	assert.Nil(t, c.Printer)
	assert.Nil(t, c.Locker)
	assert.False(t, c.Tracer.Enabled())
	assert.False(t, c.Meter.Enabled())
	assert.False(t, c.Logs.Enabled())
	assert.False(t, c.Profiler.Enabled())
	assert.NotNil(t, c.Metrics)
	assert.Same(t, log, c.Logger)
	assert.True(t, c.LateFeePolicy.Enabled)
	assert.Equal(t, 5, c.LateFeePolicy.GracePeriodDays)
	require.NotNil(t, c.LateFeePolicy.FlatFee)
	assert.Equal(t, "10", c.LateFeePolicy.FlatFee.String())

	sqlDB, err := c.DB.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, config.DriverSQLite, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)
	number, err := c.Invoices.NextNumber(ctx, uuid.New())
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{4}-00001$`, number)
	assert.Contains(t, number, time.Now().In(lisbon).Format("2006"))

	assert.True(t, c.SAFT.Validate(saft.ExportOptions{FiscalYear: 2024, StartMonth: 1, EndMonth: 12}).Valid)
}

func TestNew_InvalidLateFeePolicy(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.LateFee.PercentageRate = "five"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t), Options{})
	assert.ErrorContains(t, err, "late fee policy")
}

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := New(context.Background(), cfg, zaptest.NewLogger(t), Options{})
	assert.ErrorContains(t, err, "database")
}

func TestClose_RunsClosersInReverse(t *testing.T) {
	var order []int
	c := &Container{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return assert.AnError },
	}}

	err := c.Close(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, c.Close(context.Background()))
}
