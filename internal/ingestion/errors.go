// Package ingestion turns uploaded résumé files into plain text and
// best-effort contact details for the screening pipeline.
package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType is returned for files whose extension has no extractor.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when a file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ExtractionError represents a failure to obtain text from one file.
type ExtractionError struct {
	FileName string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.FileName, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.FileName, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
