package components

import "errors"

var (
	ErrInvalidRange    = errors.New("invalid enrichment range")
	ErrUnknownMaterial = errors.New("unknown material")
)
