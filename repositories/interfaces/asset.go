package interfaces

import (
	"context"

	"bloom-monitor/models"

	"gorm.io/gorm"
)

// AssetRepositoryInterface defines the contract for datacenter asset and reading data access.
type AssetRepositoryInterface interface {
	// Create persists a new asset.
	Create(ctx context.Context, asset *models.Asset) error

	// GetByID retrieves an asset with its readings in insertion order.
	GetByID(ctx context.Context, id string) (*models.Asset, error)

	// AppendReading appends a reading to an existing asset within tx and returns the updated asset.
	AppendReading(ctx context.Context, tx *gorm.DB, assetID string, reading *models.Reading) (*models.Asset, error)

	// ListWithLatestReading returns every asset together with its most recent reading.
	ListWithLatestReading(ctx context.Context) ([]models.AssetWithLatest, error)
}
