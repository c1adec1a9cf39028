package database

import (
	"context"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

type PlaceRepository interface {
	Insert(ctx context.Context, place *domain.Place) error
	ListAll(ctx context.Context) ([]domain.Place, error)
}
