package scheduler

import (
	"context"

	appinvoicing "github.com/JIGLE/proman-sub000/internal/application/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LateFeeJobName names the daily late-fee run
const LateFeeJobName = "late-fees"

// LateFeeRunner applies late fees across every user
type LateFeeRunner interface {
	ApplyLateFeesForAllUsers(ctx context.Context, cfg invoicing.LateFeeConfig) (map[uuid.UUID]*appinvoicing.LateFeeRunResult, error)
}

// LateFeeJob applies the default late-fee policy to all users
type LateFeeJob struct {
	runner LateFeeRunner
	policy invoicing.LateFeeConfig
	logger *zap.Logger
}

// NewLateFeeJob creates a new LateFeeJob
func NewLateFeeJob(runner LateFeeRunner, policy invoicing.LateFeeConfig, logger *zap.Logger) *LateFeeJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LateFeeJob{runner: runner, policy: policy, logger: logger}
}

// Name implements Job
func (j *LateFeeJob) Name() string { return LateFeeJobName }

// Run implements Job
func (j *LateFeeJob) Run(ctx context.Context) error {
	if !j.policy.Enabled {
		j.logger.Info("late fee policy disabled, nothing to apply")
		return nil
	}
	results, err := j.runner.ApplyLateFeesForAllUsers(ctx, j.policy)
	if err != nil {
		return err
	}

	applied, failed := 0, 0
	total := decimal.Zero
	for _, r := range results {
		applied += len(r.Applied)
		failed += len(r.Failed)
		total = total.Add(r.TotalLateFees)
	}
	j.logger.Info("late fees applied",
		zap.Int("users", len(results)),
		zap.Int("invoices", applied),
		zap.Int("failed", failed),
		zap.String("total_late_fees", total.StringFixed(2)),
	)
	return nil
}
