// Package datasource loads draw history from external stores.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// DataSource defines the interface for reading draw history
type DataSource interface {
	// Load returns every available draw record
	Load(ctx context.Context) ([]models.DrawRecord, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "not_found")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound    = "not_found"
	ErrCodeInvalidData = "invalid_data"
	ErrCodeIO          = "io_error"
)

// Sentinel errors
var (
	ErrNotFound    = errors.New("data not found")
	ErrInvalidData = errors.New("invalid data format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
