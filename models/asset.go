package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetType enumerates the kinds of tracked datacenter hardware.
type AssetType string

const (
	AssetTypeServer  AssetType = "server"
	AssetTypeStorage AssetType = "storage"
)

// IsValid reports whether t is a known asset type.
func (t AssetType) IsValid() bool {
	return t == AssetTypeServer || t == AssetTypeStorage
}

// Asset Models
type Asset struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Location   string    `gorm:"not null;index" json:"location"`
	AssetType  AssetType `gorm:"not null;size:16" json:"assetType"`
	ProductID  *string   `gorm:"size:64" json:"assetId,omitempty"`
	CustomerID *string   `gorm:"size:64;index" json:"customerId,omitempty"`
	Readings   []Reading `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"iotReadings"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Asset) TableName() string {
	return "datacenter_assets"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// LatestReading returns the last appended reading, or nil when the asset has none.
func (a *Asset) LatestReading() *Reading {
	if a == nil || len(a.Readings) == 0 {
		return nil
	}
	latest := a.Readings[len(a.Readings)-1]
	return &latest
}

// Reading is one telemetry sample. Readings of an asset are append-only and
// ordered by insertion.
type Reading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AssetID     string    `gorm:"size:36;not null;index" json:"-"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	PowerDraw   *float64  `json:"powerDraw,omitempty"`
	SmokeLevel  *int      `json:"smokeLevel,omitempty"`
}

func (Reading) TableName() string {
	return "asset_readings"
}

// AssetWithLatest is an asset augmented with its latest reading.
type AssetWithLatest struct {
	Asset
	LatestReading *Reading `json:"latestReading"`
}
