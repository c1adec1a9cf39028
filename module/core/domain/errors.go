package domain

import "errors"

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidPlace      = errors.New("invalid place")
)
