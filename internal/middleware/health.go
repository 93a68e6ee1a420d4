package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	HealthOK           = "ok"
	HealthDegraded     = "degraded"
	HealthShuttingDown = "shutting_down"

	healthCacheDuration = 5 * time.Second
	storePingTimeout    = 2 * time.Second
)

type HealthStatus struct {
	Status      string    `json:"status"`
	Store       string    `json:"store"`
	StoreError  string    `json:"store_error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
}

// HealthChecker reports the service state together with the reachability of
// the donation store. Responses are cached for a few seconds so that probes
// do not hit the database on every call.
type HealthChecker struct {
	mu        sync.Mutex
	store     string
	version   string
	status    string
	ping      func(ctx context.Context) error
	startedAt time.Time

	lastCode     int
	lastResponse []byte
	lastChecked  time.Time
}

// NewHealthChecker creates a checker for the named store. ping may be nil
// when the store lives in process.
func NewHealthChecker(store string, ping func(ctx context.Context) error) *HealthChecker {
	return &HealthChecker{
		store:     store,
		version:   "dev",
		status:    HealthOK,
		ping:      ping,
		startedAt: time.Now(),
	}
}

func (h *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.lastResponse != nil && time.Since(h.lastChecked) < healthCacheDuration {
			c.Data(h.lastCode, "application/json; charset=utf-8", h.lastResponse)
			return
		}

		status := h.check(c.Request.Context())
		code := http.StatusOK
		if status.Status != HealthOK {
			code = http.StatusServiceUnavailable
		}

		response, err := json.Marshal(status)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		h.lastCode = code
		h.lastResponse = response
		h.lastChecked = status.LastChecked

		c.Data(code, "application/json; charset=utf-8", response)
	}
}

func (h *HealthChecker) check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:      h.status,
		Store:       h.store,
		LastChecked: time.Now(),
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		Version:     h.version,
	}

	if status.Status == HealthOK && h.ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx, storePingTimeout)
		defer cancel()

		if err := h.ping(pingCtx); err != nil {
			status.Status = HealthDegraded
			status.StoreError = err.Error()
		}
	}

	return status
}

// SetStatus overrides the reported state, e.g. while shutting down.
func (h *HealthChecker) SetStatus(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status = status
	h.lastResponse = nil
}

func (h *HealthChecker) SetVersion(version string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.version = version
	h.lastResponse = nil
}
