package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mediakit/internal/httpkit"
)

const healthCheckTimeout = 5 * time.Second

// Health reports liveness. With ?deep=true it also pings postgres, redis and
// the storage provider, and reports "degraded" when any of them fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":  "ok",
		"service": "mediakit-api",
		"version": "1.0.0",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := map[string]map[string]any{
			"postgres": h.checkPostgres(ctx),
			"redis":    h.checkQueue(ctx),
			"storage":  h.checkStorage(ctx),
		}
		health["checks"] = checks

		for name, check := range checks {
			if check["status"] != "ok" {
				health["status"] = "degraded"
				h.log.FromContext(ctx).Warn("health check degraded", "check", name, "error", check["error"])
				break
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) checkPostgres(ctx context.Context) map[string]any {
	result := h.check(ctx, h.db)
	if pool, ok := h.db.(*pgxpool.Pool); ok && result["status"] == "ok" {
		stats := pool.Stat()
		result["total_conns"] = stats.TotalConns()
		result["idle_conns"] = stats.IdleConns()
		result["acquired_conns"] = stats.AcquiredConns()
	}
	return result
}

func (h *Handler) checkQueue(ctx context.Context) map[string]any {
	result := h.check(ctx, h.queue)
	if h.queue == nil || result["status"] != "ok" {
		return result
	}
	depth, err := h.queue.Len(ctx)
	if err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
		return result
	}
	result["queue_depth"] = depth
	return result
}

func (h *Handler) checkStorage(ctx context.Context) map[string]any {
	result := h.check(ctx, h.sp)
	if h.sp != nil {
		result["provider"] = h.sp.Provider()
	}
	return result
}

func (h *Handler) check(ctx context.Context, p Pinger) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if p == nil {
		result["status"] = "error"
		result["error"] = "not configured"
	} else if err := p.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}
