package catalog

import "errors"

var (
	ErrDuplicatePath     = errors.New("video path already cataloged")
	ErrUnsupportedFormat = errors.New("unsupported video format")
	ErrNotFound          = errors.New("video not found")
	ErrInvalidRating     = errors.New("rating must be between 0 and 5")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrInvalidSortOrder  = errors.New("invalid sort order")
	ErrInvalidSearchMode = errors.New("invalid search mode")
	ErrIO                = errors.New("catalog i/o error")
	ErrSchemaMismatch    = errors.New("schema version mismatch")
)
