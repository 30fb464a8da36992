package plancatalog

import "errors"

var (
	ErrAmountUnknown  = errors.New("plan amount could not be resolved")
	ErrEmptySlug      = errors.New("plan slug is required")
	ErrInvalidCatalog = errors.New("invalid plan catalog configuration")
)
