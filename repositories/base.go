package repositories

import (
	"bloom-monitor/models"

	"gorm.io/gorm"
)

// --- Shared query scopes ---

// readingsInOrder preloads the readings of an asset in insertion order.
func readingsInOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("Readings", func(db *gorm.DB) *gorm.DB {
		return db.Order("asset_readings.id ASC")
	})
}

// activeAlerts restricts a query to alerts that are not resolved.
func activeAlerts(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", models.AlertStatusResolved)
}

// alertsForAsset restricts a query to alerts raised for one asset.
func alertsForAsset(assetID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("datacenter_id = ?", assetID)
	}
}

const newestFirst = "timestamp DESC, created_at DESC"
