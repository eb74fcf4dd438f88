package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so every query becomes a
// child span of the request. Query variables are redacted unless
// logFullSQL is set.
func RegisterDBTracing(db *gorm.DB, dbSystem string, logFullSQL bool, logger *zap.Logger) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem)}
	if !logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("database tracing enabled", zap.String("db_system", dbSystem), zap.Bool("log_full_sql", logFullSQL))
	}
	return nil
}
