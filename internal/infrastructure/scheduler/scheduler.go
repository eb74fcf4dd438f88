// Package scheduler runs daily background jobs such as the late-fee batch.
// A run is guarded by a lock keyed by job name and date so that only one
// replica executes it per day.
package scheduler

import (
	"context"
	"fmt"
	"time"
)

// JobStatus represents the outcome of a job run
type JobStatus string

const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
	JobStatusSkipped JobStatus = "SKIPPED"
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job
func (f JobFunc) Name() string { return f.JobName }

// Run implements Job
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// RunRecord describes the most recent run of a job
type RunRecord struct {
	Job         string     `json:"job"`
	Date        string     `json:"date"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Config holds the daily trigger settings
type Config struct {
	Hour          int
	Minute        int
	CheckInterval time.Duration
	JobTimeout    time.Duration
	LockTTL       time.Duration
	Location      *time.Location
}

// DefaultConfig runs at 02:00 and checks every minute
func DefaultConfig() Config {
	return Config{
		Hour:          2,
		Minute:        0,
		CheckInterval: time.Minute,
		JobTimeout:    30 * time.Minute,
		LockTTL:       time.Hour,
		Location:      time.UTC,
	}
}

// Validate checks the configured time of day and intervals
func (c Config) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%w: lock ttl must be positive", ErrInvalidConfig)
	}
	return nil
}

// LockKey is the run lock key for job on the given date
func LockKey(job string, date time.Time) string {
	return job + ":" + date.Format("2006-01-02")
}
