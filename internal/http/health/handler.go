// Package health serves the liveness endpoint and reports the state of the
// backing stores.
package health

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

const checkTimeout = 2 * time.Second

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Response is the payload for the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler returns a plain HTTP handler that runs every check. Any failure
// turns the response into 503 "degraded".
func Handler(checks map[string]Check) http.HandlerFunc {
	names := slices.Sorted(maps.Keys(checks))
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Status: "healthy"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				applog.LogWarn(r.Context(), "health check failed", zap.String("check", name), zap.Error(err))
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "up"
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
