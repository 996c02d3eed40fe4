package models

import (
	"fmt"
	"strings"
)

// ReadingInput is the ingestion payload posted by an IoT collector.
type ReadingInput struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	PowerDraw   *float64 `json:"powerDraw"`
	SmokeLevel  *int     `json:"smokeLevel"`
}

// Validate rejects payloads that cannot be evaluated. It returns the name of the
// offending field together with the reason.
func (in ReadingInput) Validate() (field string, err error) {
	if in.Temperature == nil && in.Humidity == nil && in.PowerDraw == nil && in.SmokeLevel == nil {
		return "reading", fmt.Errorf("at least one of temperature, humidity, powerDraw or smokeLevel is required")
	}
	if in.Humidity != nil && (*in.Humidity < 0 || *in.Humidity > 100) {
		return "humidity", fmt.Errorf("must be between 0 and 100")
	}
	if in.PowerDraw != nil && *in.PowerDraw < 0 {
		return "powerDraw", fmt.Errorf("must not be negative")
	}
	if in.SmokeLevel != nil && *in.SmokeLevel != 0 && *in.SmokeLevel != 1 {
		return "smokeLevel", fmt.Errorf("must be 0 or 1")
	}
	return "", nil
}

// ToReading converts the input into a storable reading without a timestamp.
func (in ReadingInput) ToReading() Reading {
	return Reading{
		Temperature: in.Temperature,
		Humidity:    in.Humidity,
		PowerDraw:   in.PowerDraw,
		SmokeLevel:  in.SmokeLevel,
	}
}

// AssetRequest is the body of an asset creation call.
type AssetRequest struct {
	Location   string    `json:"location"`
	AssetType  AssetType `json:"assetType"`
	ProductID  *string   `json:"assetId"`
	CustomerID *string   `json:"customerId"`
}

// Validate checks the required fields of an asset creation request.
func (r AssetRequest) Validate() (field string, err error) {
	if strings.TrimSpace(r.Location) == "" {
		return "location", fmt.Errorf("is required")
	}
	if !r.AssetType.IsValid() {
		return "assetType", fmt.Errorf("must be one of server, storage")
	}
	return "", nil
}

// ToAsset builds an Asset from the request.
func (r AssetRequest) ToAsset() *Asset {
	return &Asset{
		Location:   strings.TrimSpace(r.Location),
		AssetType:  r.AssetType,
		ProductID:  r.ProductID,
		CustomerID: r.CustomerID,
	}
}

// IngestResult is the outcome of a single ingestion call.
type IngestResult struct {
	Asset           *Asset   `json:"datacenter"`
	Reading         Reading  `json:"reading"`
	TriggeredAlerts []*Alert `json:"triggeredAlerts"`
}
