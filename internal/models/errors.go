package models

import "errors"

// Custom errors
var (
	ErrInvalidDraw  = errors.New("invalid draw record")
	ErrEmptyHistory = errors.New("history is empty")
)
