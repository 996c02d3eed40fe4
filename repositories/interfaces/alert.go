package interfaces

import (
	"context"

	"bloom-monitor/models"
)

// AlertRepositoryInterface defines the contract for alert data access.
type AlertRepositoryInterface interface {
	// Create inserts an alert, filling status, read and timestamp defaults.
	Create(ctx context.Context, alert *models.Alert) (*models.Alert, error)

	// GetByID retrieves a single alert.
	GetByID(ctx context.Context, id string) (*models.Alert, error)

	// Update applies a partial patch to the mutable fields of an alert.
	Update(ctx context.Context, id string, patch models.AlertPatch) (*models.Alert, error)

	// Resolve marks an alert as resolved. Resolving twice is not an error.
	Resolve(ctx context.Context, id string) (*models.Alert, error)

	// ListAll returns every alert, newest first.
	ListAll(ctx context.Context) ([]models.Alert, error)

	// ListActive returns every alert that is not resolved, newest first.
	ListActive(ctx context.Context) ([]models.Alert, error)

	// ListByAsset returns the alerts raised for one asset, newest first.
	ListByAsset(ctx context.Context, assetID string) ([]models.Alert, error)
}
