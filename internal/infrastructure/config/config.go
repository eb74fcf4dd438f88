package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "PROMAN"

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Scheduler SchedulerConfig
	LateFee   LateFeeConfig
	SAFT      SAFTConfig
	Printing  PrintingConfig
	Swagger   SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Timezone string // IANA name used for due dates and reporting periods
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
	// AllowUserHeader accepts X-User-ID instead of a token; refused in production
	AllowUserHeader bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool    // Log full SQL statements (dev only)

	MetricsEnabled  bool          // Export business metrics over OTLP
	MetricsInterval time.Duration // Metric export period
	LogsEnabled     bool          // Mirror zap entries to the OTLP log pipeline

	ProfilingEnabled  bool   // Push Pyroscope profiles
	PyroscopeAddress  string // e.g. "http://pyroscope:4040"
	PyroscopeUser     string
	PyroscopePassword string
}

// SwaggerConfig holds API documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Serve /swagger
	RequireAuth bool     // Require a valid token to read the docs
	AllowedIPs  []string // IPs or CIDRs allowed to read the docs; empty allows all
}

// SchedulerConfig holds the daily late-fee job settings
type SchedulerConfig struct {
	Enabled       bool
	LateFeeHour   int
	LateFeeMinute int
	CheckInterval time.Duration
	JobTimeout    time.Duration
	LockTTL       time.Duration
}

// LateFeeConfig is the default late-fee policy. Amounts are kept as strings
// so that TOML and environment values parse exactly.
type LateFeeConfig struct {
	Enabled         bool
	GracePeriodDays int
	PercentageRate  string
	FlatFee         string
	MaxPercentage   string
}

// Policy converts the configured values into the domain policy
func (c LateFeeConfig) Policy() (invoicing.LateFeeConfig, error) {
	policy := invoicing.LateFeeConfig{
		Enabled:         c.Enabled,
		GracePeriodDays: c.GracePeriodDays,
		PercentageRate:  decimal.Zero,
	}
	if c.PercentageRate != "" {
		rate, err := decimal.NewFromString(c.PercentageRate)
		if err != nil {
			return policy, fmt.Errorf("late_fee.percentage_rate: %w", err)
		}
		policy.PercentageRate = rate
	}
	if c.FlatFee != "" {
		fee, err := decimal.NewFromString(c.FlatFee)
		if err != nil {
			return policy, fmt.Errorf("late_fee.flat_fee: %w", err)
		}
		policy.FlatFee = &fee
	}
	if c.MaxPercentage != "" {
		maxPct, err := decimal.NewFromString(c.MaxPercentage)
		if err != nil {
			return policy, fmt.Errorf("late_fee.max_percentage: %w", err)
		}
		policy.MaxPercentage = &maxPct
	}
	if err := policy.Validate(); err != nil {
		return policy, err
	}
	return policy, nil
}

// SAFTConfig holds the company header used when an export request omits it
type SAFTConfig struct {
	TaxRegistrationNumber     string
	CompanyName               string
	BusinessName              string
	Street                    string
	City                      string
	PostalCode                string
	Country                   string
	Email                     string
	Telephone                 string
	SeriesCode                string
	SoftwareCertificateNumber string
}

// Company converts the configured header into export company info
func (c SAFTConfig) Company() saft.CompanyInfo {
	return saft.CompanyInfo{
		TaxRegistrationNumber: c.TaxRegistrationNumber,
		CompanyName:           c.CompanyName,
		BusinessName:          c.BusinessName,
		Address: valueobject.Address{
			Street:     c.Street,
			City:       c.City,
			PostalCode: c.PostalCode,
			Country:    c.Country,
		},
		Email:     c.Email,
		Telephone: c.Telephone,
	}
}

// PrintingConfig holds headless Chrome settings for invoice PDFs
type PrintingConfig struct {
	ChromePath string // empty uses the chromedp lookup
	Timeout    time.Duration
}

// Load loads configuration from .env, TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with PROMAN_ prefix (e.g., PROMAN_DATABASE_PASSWORD)
// 2. Variables from a .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// godotenv never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/proman")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return loadFrom(v)
}

func loadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			Timezone: v.GetString("app.timezone"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			AllowUserHeader:       v.GetBool("jwt.allow_user_header"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
			PyroscopeUser:     v.GetString("telemetry.pyroscope_user"),
			PyroscopePassword: v.GetString("telemetry.pyroscope_password"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			LateFeeHour:   v.GetInt("scheduler.late_fee_hour"),
			LateFeeMinute: v.GetInt("scheduler.late_fee_minute"),
			CheckInterval: v.GetDuration("scheduler.check_interval"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
			LockTTL:       v.GetDuration("scheduler.lock_ttl"),
		},
		LateFee: LateFeeConfig{
			Enabled:         v.GetBool("late_fee.enabled"),
			GracePeriodDays: v.GetInt("late_fee.grace_period_days"),
			PercentageRate:  v.GetString("late_fee.percentage_rate"),
			FlatFee:         v.GetString("late_fee.flat_fee"),
			MaxPercentage:   v.GetString("late_fee.max_percentage"),
		},
		SAFT: SAFTConfig{
			TaxRegistrationNumber:     v.GetString("saft.tax_registration_number"),
			CompanyName:               v.GetString("saft.company_name"),
			BusinessName:              v.GetString("saft.business_name"),
			Street:                    v.GetString("saft.street"),
			City:                      v.GetString("saft.city"),
			PostalCode:                v.GetString("saft.postal_code"),
			Country:                   v.GetString("saft.country"),
			Email:                     v.GetString("saft.email"),
			Telephone:                 v.GetString("saft.telephone"),
			SeriesCode:                v.GetString("saft.series_code"),
			SoftwareCertificateNumber: v.GetString("saft.software_certificate_number"),
		},
		Printing: PrintingConfig{
			ChromePath: v.GetString("printing.chrome_path"),
			Timeout:    v.GetDuration("printing.timeout"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "proman"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Europe/Lisbon"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "proman"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "proman.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "proman"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second // PDF rendering and exports
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	// An empty origin list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-User-ID"}
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "proman-archive"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "proman"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Scheduler.LateFeeHour == 0 && cfg.Scheduler.LateFeeMinute == 0 {
		cfg.Scheduler.LateFeeHour = 2
	}
	if cfg.Scheduler.CheckInterval == 0 {
		cfg.Scheduler.CheckInterval = time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Scheduler.LockTTL == 0 {
		cfg.Scheduler.LockTTL = time.Hour
	}
	if cfg.LateFee.PercentageRate == "" {
		cfg.LateFee.PercentageRate = "5"
	}
	if cfg.LateFee.GracePeriodDays == 0 {
		cfg.LateFee.GracePeriodDays = 5
	}
	if cfg.SAFT.Country == "" {
		cfg.SAFT.Country = valueobject.DefaultCountry
	}
	if cfg.SAFT.SeriesCode == "" {
		cfg.SAFT.SeriesCode = saft.DefaultSeriesCode
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}

	if c.Scheduler.LateFeeHour < 0 || c.Scheduler.LateFeeHour > 23 {
		return fmt.Errorf("scheduler.late_fee_hour must be between 0 and 23")
	}
	if c.Scheduler.LateFeeMinute < 0 || c.Scheduler.LateFeeMinute > 59 {
		return fmt.Errorf("scheduler.late_fee_minute must be between 0 and 59")
	}

	if _, err := c.LateFee.Policy(); err != nil {
		return err
	}

	if c.Storage.Enabled && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.JWT.AllowUserHeader {
			return fmt.Errorf("jwt.allow_user_header must be false in production")
		}
		if c.Database.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
		}
	}

	for _, entry := range c.Swagger.AllowedIPs {
		if !validIPOrCIDR(entry) {
			return fmt.Errorf("swagger.allowed_ips: %q is not an IP address or CIDR", entry)
		}
	}

	if c.Telemetry.ProfilingEnabled && c.Telemetry.PyroscopeAddress == "" {
		return fmt.Errorf("telemetry.pyroscope_address is required when profiling is enabled")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// Location returns the configured time zone
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// MigrationURL returns the golang-migrate database URL for the configured driver
func (d *DatabaseConfig) MigrationURL() string {
	if d.Driver == DriverSQLite {
		return "sqlite3://" + d.SQLitePath
	}
	return d.DSN()
}

func validIPOrCIDR(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
