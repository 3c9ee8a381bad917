// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ovalles/posledger-be/internal/adapters/db"
	"github.com/ovalles/posledger-be/internal/pkg/config"
)

// HealthHandler reports service liveness and dependency readiness
type HealthHandler struct {
	db        *db.Database
	redis     *redis.Client
	inspector *asynq.Inspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	database *db.Database,
	redisClient *redis.Client,
	inspector *asynq.Inspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        database,
		redis:     redisClient,
		inspector: inspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// HealthStatus represents the overall health of the service
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	System    map[string]interface{} `json:"system,omitempty"`
}

// CheckResult is the outcome of a single dependency check
type CheckResult struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Health handles GET /health. It is a cheap liveness probe and never
// touches dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// Readiness handles GET /health/ready. It verifies that the database,
// Redis, and the task queue are reachable before the service accepts
// traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckResult{
		"database": h.checkDatabase(ctx),
		"redis":    h.checkRedis(ctx),
		"queue":    h.checkQueue(),
	}

	overall := "ok"
	httpStatus := http.StatusOK
	for name, check := range checks {
		if check.Status == "error" {
			overall = "degraded"
			httpStatus = http.StatusServiceUnavailable
			h.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("error", check.Error))
		}
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
		System:    h.systemInfo(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(status)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CheckResult{Status: "error", Error: err.Error()}
	}
	return CheckResult{Status: "ok", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkRedis(ctx context.Context) CheckResult {
	start := time.Now()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return CheckResult{Status: "error", Error: err.Error()}
	}
	return CheckResult{Status: "ok", Latency: time.Since(start).String()}
}

func (h *HealthHandler) checkQueue() CheckResult {
	if h.inspector == nil {
		return CheckResult{Status: "skipped"}
	}
	start := time.Now()
	if _, err := h.inspector.Queues(); err != nil {
		return CheckResult{Status: "error", Error: err.Error()}
	}
	return CheckResult{Status: "ok", Latency: time.Since(start).String()}
}

func (h *HealthHandler) systemInfo() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]interface{}{
		"goroutines":      runtime.NumGoroutine(),
		"memory_alloc_mb": mem.Alloc / 1024 / 1024,
		"memory_sys_mb":   mem.Sys / 1024 / 1024,
		"num_gc":          mem.NumGC,
		"go_version":      runtime.Version(),
	}
}
