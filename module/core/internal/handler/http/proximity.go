package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

type proximityService interface {
	Track(ctx context.Context, pos domain.Coordinate) ([]domain.ProximityEvent, error)
	Alerted() []string
	Reset()
	Radius() float64
}

type eventResponse struct {
	PlaceID        string  `json:"place_id"`
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
}

type trackResponse struct {
	Events []eventResponse `json:"events"`
}

type alertsResponse struct {
	Alerted      []string `json:"alerted"`
	RadiusMeters float64  `json:"radius_meters"`
}

// ProximityHandler lets a client push its own fixes over HTTP and inspect or
// reset the alert session.
type ProximityHandler struct {
	svc proximityService
}

func NewProximityHandler(svc proximityService) *ProximityHandler {
	return &ProximityHandler{svc: svc}
}

func (h *ProximityHandler) Register(r *gin.RouterGroup) {
	r.POST("/positions", h.TrackPosition)
	r.GET("/alerts", h.GetAlerts)
	r.DELETE("/alerts", h.ResetAlerts)
}

func (h *ProximityHandler) TrackPosition(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position: " + err.Error()})
		return
	}

	events, err := h.svc.Track(c.Request.Context(), req.toDomain())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to track position"})
		return
	}

	resp := trackResponse{Events: make([]eventResponse, len(events))}
	for i, ev := range events {
		resp.Events[i] = eventResponse{
			PlaceID:        ev.Place.ID,
			Name:           ev.Place.Name,
			DistanceMeters: ev.DistanceMeters,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProximityHandler) GetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, alertsResponse{
		Alerted:      h.svc.Alerted(),
		RadiusMeters: h.svc.Radius(),
	})
}

func (h *ProximityHandler) ResetAlerts(c *gin.Context) {
	h.svc.Reset()
	c.Status(http.StatusNoContent)
}
