package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobobdev/place-reminder/module/core/domain"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/database"
)

type PlaceService struct {
	repo  database.PlaceRepository
	now   func() time.Time
	newID func() string
}

func NewPlaceService(repo database.PlaceRepository) *PlaceService {
	return &PlaceService{repo: repo, now: time.Now, newID: uuid.NewString}
}

// Save validates p, assigns its id and creation time, and stores it.
func (s *PlaceService) Save(ctx context.Context, p *domain.Place) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := domain.ValidatePlace(p); err != nil {
		return err
	}

	p.ID = s.newID()
	p.CreatedAt = s.now().UTC()
	if err := s.repo.Insert(ctx, p); err != nil {
		return fmt.Errorf("insert place: %w", err)
	}
	return nil
}

func (s *PlaceService) ListAll(ctx context.Context) ([]domain.Place, error) {
	return s.repo.ListAll(ctx)
}
