package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jobobdev/place-reminder/module/core/domain"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/database"
)

var _ database.PlaceRepository = (*PlaceRepo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS places (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	rating     DOUBLE PRECISION NOT NULL DEFAULT 0,
	reviews    INTEGER NOT NULL DEFAULT 0,
	hours      TEXT[] NOT NULL DEFAULT '{}',
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	memo       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PlaceRepo struct {
	db *sql.DB
}

func NewPlaceRepo(db *sql.DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

func (r *PlaceRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create places table: %w", err)
	}
	return nil
}

func (r *PlaceRepo) Insert(ctx context.Context, p *domain.Place) error {
	hours := p.Hours
	if hours == nil {
		hours = []string{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO places (id, name, address, rating, reviews, hours, latitude, longitude, memo, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Address, p.Rating, p.Reviews, pq.Array(hours), p.Position.Lat, p.Position.Lng, p.Memo, p.CreatedAt,
	)
	return err
}

func (r *PlaceRepo) ListAll(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, rating, reviews, hours, latitude, longitude, memo, created_at FROM places ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	results := []domain.Place{}
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Address, &p.Rating, &p.Reviews, pq.Array(&p.Hours),
			&p.Position.Lat, &p.Position.Lng, &p.Memo, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
