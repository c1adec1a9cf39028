package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

type placeService interface {
	Save(ctx context.Context, p *domain.Place) error
	ListAll(ctx context.Context) ([]domain.Place, error)
}

type placeTracker interface {
	AddPlace(ctx context.Context, p domain.Place) ([]domain.ProximityEvent, error)
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" binding:"required,latitude"`
	Lng *float64 `json:"lng" binding:"required,longitude"`
}

func (c coordinateRequest) toDomain() domain.Coordinate {
	return domain.Coordinate{Lat: *c.Lat, Lng: *c.Lng}
}

type createPlaceRequest struct {
	Name     string            `json:"name" binding:"required"`
	Address  string            `json:"address"`
	Rating   float64           `json:"rating" binding:"gte=0,lte=5"`
	Reviews  int               `json:"reviews" binding:"gte=0"`
	Hours    []string          `json:"hours"`
	Position coordinateRequest `json:"position"`
	Memo     string            `json:"memo"`
}

type PlaceHandler struct {
	placeSvc placeService
	tracker  placeTracker
	logger   *slog.Logger
}

func NewPlaceHandler(placeSvc placeService, tracker placeTracker, logger *slog.Logger) *PlaceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaceHandler{placeSvc: placeSvc, tracker: tracker, logger: logger}
}

func (h *PlaceHandler) Register(r *gin.RouterGroup) {
	r.POST("/places", h.CreatePlace)
	r.GET("/places", h.ListPlaces)
}

func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	var req createPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place: " + err.Error()})
		return
	}

	place := &domain.Place{
		Name:     req.Name,
		Address:  req.Address,
		Rating:   req.Rating,
		Reviews:  req.Reviews,
		Hours:    req.Hours,
		Position: req.Position.toDomain(),
		Memo:     req.Memo,
	}
	if err := h.placeSvc.Save(c.Request.Context(), place); err != nil {
		if errors.Is(err, domain.ErrInvalidPlace) || errors.Is(err, domain.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("save place failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save place"})
		return
	}

	if h.tracker != nil {
		if _, err := h.tracker.AddPlace(c.Request.Context(), *place); err != nil {
			h.logger.Warn("place saved but not tracked", slog.String("place_id", place.ID), slog.Any("error", err))
		}
	}

	c.JSON(http.StatusCreated, place)
}

func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	places, err := h.placeSvc.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list places failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch places"})
		return
	}
	if places == nil {
		places = []domain.Place{}
	}

	c.JSON(http.StatusOK, places)
}
