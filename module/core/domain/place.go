package domain

import (
	"fmt"
	"strings"
	"time"
)

type Place struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Rating    float64    `json:"rating"`
	Reviews   int        `json:"reviews"`
	Hours     []string   `json:"hours"`
	Position  Coordinate `json:"position"`
	Memo      string     `json:"memo"`
	CreatedAt time.Time  `json:"created_at"`
}

func ValidatePlace(p *Place) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlace)
	}
	return ValidateCoordinate(p.Position)
}
