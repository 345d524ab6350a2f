// Package ml implements the recurrent sequence model over encoded draws.
package ml

import "errors"

var (
	// ErrInsufficientData indicates the history is too short to build a training window
	ErrInsufficientData = errors.New("insufficient data for training")

	// ErrUntrained indicates prediction was requested from a model that was never fit
	ErrUntrained = errors.New("model is untrained")
)
