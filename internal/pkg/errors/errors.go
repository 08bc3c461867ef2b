package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalid           = errors.New("invalid")
	ErrConflict          = errors.New("conflict")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failed")
	ErrNoContent         = errors.New("no content")
	ErrEmptyInput        = errors.New("empty input")
	ErrEmbeddingBackend  = errors.New("embedding backend unavailable")
	ErrSearch            = errors.New("search execution failed")
)
