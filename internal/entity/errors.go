package entity

import "errors"

// Domain errors
var (
	// Chunking configuration errors. These are programming/config errors
	// and always fail the call.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrInvalidOverlap   = errors.New("overlap must be non-negative and smaller than chunk size")

	// External collaborator errors
	ErrEmbedding  = errors.New("embedding service failed")
	ErrIndexQuery = errors.New("similarity index query failed")
	ErrCompletion = errors.New("completion service failed")

	// Document errors
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyFiles      = errors.New("too many files")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrTotalSizeTooLarge = errors.New("total file size too large")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
