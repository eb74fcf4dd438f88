package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/JIGLE/proman-sub000/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
)

// Pinger checks a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// JobReporter exposes the last scheduled run
type JobReporter interface {
	LastRun() *scheduler.RunRecord
}

// HealthHandler reports liveness and dependency status
type HealthHandler struct {
	db      Pinger
	jobs    JobReporter
	version string
}

// NewHealthHandler creates a new HealthHandler; jobs may be nil
func NewHealthHandler(db Pinger, jobs JobReporter, version string) *HealthHandler {
	return &HealthHandler{db: db, jobs: jobs, version: version}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string               `json:"status"`
	Version   string               `json:"version"`
	Database  string               `json:"database"`
	LateFees  *scheduler.RunRecord `json:"late_fees,omitempty"`
	CheckedAt time.Time            `json:"checked_at"`
}

// Check handles GET /health. It answers 503 when the database is unreachable.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Database:  "ok",
		CheckedAt: time.Now().UTC(),
	}
	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if h.jobs != nil {
		resp.LateFees = h.jobs.LastRun()
	}
	c.JSON(status, resp)
}
