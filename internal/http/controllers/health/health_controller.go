// Package health serves the liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/talentlink/talentlink/internal/observability/logger"
)

// Pinger checks one downstream dependency.
type Pinger struct {
	Name string
	Ping func(ctx context.Context) error
}

// Controller answers /healthz and /readyz.
type Controller struct {
	pingers []Pinger
}

// NewController creates a health Controller with the given readiness checks.
func NewController(pingers ...Pinger) *Controller {
	return &Controller{pingers: pingers}
}

// Healthz reports process liveness. Always 200.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Readyz reports whether every downstream dependency answers.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{}
	ready := true
	for _, p := range c.pingers {
		if err := p.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness check failed",
				logger.String("dependency", p.Name),
				logger.Err(err),
			)
			status[p.Name] = "down"
			ready = false
			continue
		}
		status[p.Name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
