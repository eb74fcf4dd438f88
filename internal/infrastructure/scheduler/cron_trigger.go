package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// DailyTrigger runs a job once a day at the configured time
type DailyTrigger struct {
	config Config
	job    Job
	locker cache.Locker
	clock  shared.Clock
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	inFlight    bool
	lastRunDate string
	last        *RunRecord
}

// NewDailyTrigger creates a trigger for job. A nil locker uses an in-memory one.
func NewDailyTrigger(config Config, job Job, locker cache.Locker, clock shared.Clock, logger *zap.Logger) (*DailyTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if locker == nil {
		locker = cache.NewInMemoryLocker()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{
		config: config,
		job:    job,
		locker: locker,
		clock:  clock,
		logger: logger.With(zap.String("job", job.Name())),
	}, nil
}

// Start starts the trigger loop
func (t *DailyTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("daily trigger started",
		zap.Int("hour", t.config.Hour),
		zap.Int("minute", t.config.Minute),
		zap.Duration("check_interval", t.config.CheckInterval),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight run up to ctx's deadline
func (t *DailyTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("daily trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *DailyTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the job when the configured minute is reached and
// it has not run today
func (t *DailyTrigger) checkAndTrigger(ctx context.Context) {
	now := t.clock.Now().In(t.config.Location)
	currentDate := now.Format("2006-01-02")

	t.mu.Lock()
	if t.lastRunDate == currentDate {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if now.Hour() != t.config.Hour || now.Minute() != t.config.Minute {
		return
	}

	t.mu.Lock()
	t.lastRunDate = currentDate
	t.mu.Unlock()

	if err := t.RunNow(ctx); err != nil && !errors.Is(err, ErrLockHeld) {
		t.logger.Error("scheduled run failed", zap.Error(err))
	}
}

// RunNow executes the job immediately under today's lock. The lock is
// left to expire so that other replicas skip the same day.
func (t *DailyTrigger) RunNow(ctx context.Context) error {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}
	t.inFlight = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.inFlight = false
		t.mu.Unlock()
	}()

	now := t.clock.Now().In(t.config.Location)
	record := &RunRecord{Job: t.job.Name(), Date: now.Format("2006-01-02"), StartedAt: now}

	key := LockKey(t.job.Name(), now)
	_, ok, err := t.locker.TryLock(ctx, key, t.config.LockTTL)
	if err != nil {
		return t.finish(record, err)
	}
	if !ok {
		t.logger.Info("run skipped, lock held elsewhere", zap.String("lock_key", key))
		record.Status = JobStatusSkipped
		t.setLast(record)
		return ErrLockHeld
	}

	record.Status = JobStatusRunning
	t.setLast(record)
	t.logger.Info("job run started", zap.String("lock_key", key))

	runCtx := ctx
	if t.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.config.JobTimeout)
		defer cancel()
	}
	return t.finish(record, t.job.Run(runCtx))
}

func (t *DailyTrigger) finish(record *RunRecord, err error) error {
	completed := t.clock.Now()
	record.CompletedAt = &completed
	if err != nil {
		record.Status = JobStatusFailed
		record.Error = err.Error()
	} else {
		record.Status = JobStatusSuccess
		t.logger.Info("job run finished", zap.Duration("duration", completed.Sub(record.StartedAt)))
	}
	t.setLast(record)
	return err
}

func (t *DailyTrigger) setLast(record *RunRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := *record
	t.last = &copied
}

// LastRun returns the most recent run, or nil before the first run
func (t *DailyTrigger) LastRun() *RunRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	copied := *t.last
	return &copied
}
