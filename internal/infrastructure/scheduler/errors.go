package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned when a job is triggered while a run is in flight
	ErrAlreadyRunning = errors.New("job already running")

	// ErrLockHeld is returned when another replica holds today's run lock
	ErrLockHeld = errors.New("run lock held by another instance")
)
