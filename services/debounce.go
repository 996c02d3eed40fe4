package services

import (
	"context"

	"bloom-monitor/models"
)

// Debouncer suppresses repeated alerts of the same type for the same asset
// within a window. Allow reports whether a candidate may be raised.
type Debouncer interface {
	Allow(ctx context.Context, assetID string, alertType models.AlertType) (bool, error)
}

// noDebounce lets every candidate through.
type noDebounce struct{}

func (noDebounce) Allow(context.Context, string, models.AlertType) (bool, error) { return true, nil }
