package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

const defaultCheckTimeout = 2 * time.Second

// DependencyCheck reports an external dependency as down when Check fails.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type sessionStats interface {
	Stats() domain.SessionStats
}

type hubStats interface {
	Clients() int
	Running() bool
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type notificationStatus struct {
	WebsocketClients int  `json:"websocket_clients"`
	HubRunning       bool `json:"hub_running"`
}

type healthResponse struct {
	Status        string                      `json:"status"`
	Dependencies  map[string]dependencyStatus `json:"dependencies"`
	Session       *domain.SessionStats        `json:"session,omitempty"`
	Notifications *notificationStatus         `json:"notifications,omitempty"`
}

// HealthHandler serves /healthz. The service is unhealthy when any
// dependency check fails or the notification hub has stopped; session
// figures are informational.
type HealthHandler struct {
	checks  []DependencyCheck
	session sessionStats
	hub     hubStats
	timeout time.Duration
}

func NewHealthHandler(session sessionStats, hub hubStats, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		session: session,
		hub:     hub,
		timeout: defaultCheckTimeout,
	}
}

func (h *HealthHandler) Register(r *gin.RouterGroup) {
	r.GET("/healthz", h.Check)
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results := make([]dependencyStatus, len(h.checks))
	var g errgroup.Group
	for i, dc := range h.checks {
		g.Go(func() error {
			if err := dc.Check(ctx); err != nil {
				results[i] = dependencyStatus{Status: "down", Error: err.Error()}
			} else {
				results[i] = dependencyStatus{Status: "up"}
			}
			return nil
		})
	}
	_ = g.Wait()

	healthy := true
	resp := healthResponse{Dependencies: make(map[string]dependencyStatus, len(results))}
	for i, dc := range h.checks {
		resp.Dependencies[dc.Name] = results[i]
		healthy = healthy && results[i].Status == "up"
	}

	if h.session != nil {
		stats := h.session.Stats()
		resp.Session = &stats
	}
	if h.hub != nil {
		resp.Notifications = &notificationStatus{
			WebsocketClients: h.hub.Clients(),
			HubRunning:       h.hub.Running(),
		}
		healthy = healthy && resp.Notifications.HubRunning
	}

	code := http.StatusOK
	resp.Status = "healthy"
	if !healthy {
		code = http.StatusServiceUnavailable
		resp.Status = "unhealthy"
	}
	c.JSON(code, resp)
}
