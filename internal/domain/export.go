package domain

import (
	"errors"
	"time"
)

// ExportFormat enumerates the supported export output formats.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatTXT  ExportFormat = "txt"
)

// ErrInvalidExportFormat indicates an unsupported export format.
var ErrInvalidExportFormat = errors.New("invalid export format")

// Validate checks that the format is one of the supported values.
func (f ExportFormat) Validate() error {
	switch f {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatTXT:
		return nil
	}
	return ErrInvalidExportFormat
}

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatCSV:
		return "text/csv"
	case ExportFormatTXT:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Export is a rendered export artifact held for download.
type Export struct {
	ID        string       `json:"id"`
	Format    ExportFormat `json:"format"`
	Data      []byte       `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}
