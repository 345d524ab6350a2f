package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/ssq-forecast/internal/models"
)

// JSONFile reads history stored as a JSON array of draw records.
type JSONFile struct {
	Path string
}

// NewJSONFile creates a JSON file source.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Name returns the source name.
func (f *JSONFile) Name() string {
	return "json_file"
}

// Load reads, validates and sorts the records oldest first.
func (f *JSONFile) Load(ctx context.Context) ([]models.DrawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewDataSourceError(f.Name(), ErrCodeNotFound, f.Path, fmt.Errorf("%w: %v", ErrNotFound, err))
		}
		return nil, NewDataSourceError(f.Name(), ErrCodeIO, "read "+f.Path, err)
	}
	var records []models.DrawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, NewDataSourceError(f.Name(), ErrCodeInvalidData, "decode "+f.Path, fmt.Errorf("%w: %v", ErrInvalidData, err))
	}
	if err := models.ValidateDraws(records); err != nil {
		return nil, NewDataSourceError(f.Name(), ErrCodeInvalidData, "validate "+f.Path, err)
	}
	return models.SortDraws(records), nil
}

// Save writes records newest first, the order the history file is published in.
func (f *JSONFile) Save(records []models.DrawRecord) error {
	sorted := models.SortDraws(records)
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return NewDataSourceError(f.Name(), ErrCodeIO, "create directory", err)
	}
	return os.WriteFile(f.Path, data, 0o644)
}
