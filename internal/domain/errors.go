package domain

import "errors"

var (
	ErrNotFound                 = errors.New("resource not found")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("forbidden")
	ErrUnsupportedFileType      = errors.New("unsupported file type")
	ErrFileTooLarge             = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed             = errors.New("file upload to storage failed")
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
	ErrInvalidTransactionSource = errors.New("invalid transaction source")
	ErrInvalidAmount            = errors.New("amount must be a positive number")
	ErrMissingDate              = errors.New("transaction date is required")
	ErrInvalidDate              = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidExportFormat      = errors.New("unsupported export format")
	ErrExtractorUnavailable     = errors.New("extraction service unavailable")
)
