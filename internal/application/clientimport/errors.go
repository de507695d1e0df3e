package clientimport

import "errors"

var (
	ErrEmptyBatch          = errors.New("import batch has no rows")
	ErrBatchTooLarge       = errors.New("import batch exceeds the row limit")
	ErrDuplicateRowNumber  = errors.New("row number used more than once in the batch")
	ErrInvalidScope        = errors.New("invalid caller scope")
	ErrBuildIndex          = errors.New("failed to load existing clients")
	ErrImportAborted       = errors.New("import aborted")
	ErrPreviewNotAvailable = errors.New("preview snapshot not available")
)

// row-level messages surfaced in ImportResult.Errors
const (
	msgDuplicateNoAction = "duplicate with no action defined"
	msgUpdateNotLinked   = "update requires a duplicate with a linked existing client"
	msgCreateFailed      = "failed to create client"
	msgUpdateFailed      = "failed to update client"
	msgPreviewDrift      = "classification changed since preview, run the preview again"
)
