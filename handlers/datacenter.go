package handlers

import (
	"bloom-monitor/handlers/base"
	"bloom-monitor/models"
	"bloom-monitor/repositories/interfaces"
	"bloom-monitor/services"

	"github.com/labstack/echo/v4"
)

// DatacenterHandler serves asset, telemetry and health endpoints.
type DatacenterHandler struct {
	assetRepo interfaces.AssetRepositoryInterface
	ingestion *services.IngestionService
	health    *services.HealthService
}

func NewDatacenterHandler(
	assetRepo interfaces.AssetRepositoryInterface,
	ingestion *services.IngestionService,
	health *services.HealthService,
) *DatacenterHandler {
	return &DatacenterHandler{
		assetRepo: assetRepo,
		ingestion: ingestion,
		health:    health,
	}
}

// ===================================================================
// ASSETS
// ===================================================================

// CreateAsset registers a new datacenter asset.
func (h *DatacenterHandler) CreateAsset(c echo.Context) error {
	var req models.AssetRequest
	if err := base.BindJSONWithValidation(c, &req, func() (string, error) { return req.Validate() }); err != nil {
		return err
	}

	asset := req.ToAsset()
	if err := h.assetRepo.Create(c.Request().Context(), asset); err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendCreatedJSON(c, "Datacenter asset created successfully", asset)
}

// ListAssets returns every asset with its latest reading.
func (h *DatacenterHandler) ListAssets(c echo.Context) error {
	assets, err := h.assetRepo.ListWithLatestReading(c.Request().Context())
	return base.SendListResult(c, assets, len(assets), err, "Datacenter assets retrieved successfully")
}

// GetAsset returns one asset with its full reading history.
func (h *DatacenterHandler) GetAsset(c echo.Context) error {
	id, err := base.ExtractStringParam(c, "id", true)
	if err != nil {
		return err
	}
	asset, err := h.assetRepo.GetByID(c.Request().Context(), id)
	return base.SendRepositoryResult(c, asset, err, "Datacenter asset retrieved successfully")
}

// ===================================================================
// TELEMETRY
// ===================================================================

// AddReading stores a reading and returns the alerts it triggered.
func (h *DatacenterHandler) AddReading(c echo.Context) error {
	id, err := base.ExtractStringParam(c, "datacenterId", true)
	if err != nil {
		return err
	}

	// Validation happens in the service so MQTT ingest gets the same checks.
	var in models.ReadingInput
	if err := base.BindAndValidateJSON(c, &in); err != nil {
		return err
	}

	result, err := h.ingestion.Ingest(c.Request().Context(), id, in)
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendCreatedJSON(c, "Reading recorded successfully", result)
}

// ===================================================================
// HEALTH
// ===================================================================

// HealthOverview returns the fleet-wide health aggregate.
func (h *DatacenterHandler) HealthOverview(c echo.Context) error {
	overview, err := h.health.Overview(c.Request().Context())
	return base.SendRepositoryResult(c, overview, err, "Health overview retrieved successfully")
}

// HealthByLocation returns one aggregate per location.
func (h *DatacenterHandler) HealthByLocation(c echo.Context) error {
	locations, err := h.health.ByLocation(c.Request().Context())
	return base.SendListResult(c, locations, len(locations), err, "Health by location retrieved successfully")
}

// AssetHealth returns every asset with its derived health status.
func (h *DatacenterHandler) AssetHealth(c echo.Context) error {
	assets, err := h.health.AssetHealth(c.Request().Context())
	return base.SendListResult(c, assets, len(assets), err, "Asset health retrieved successfully")
}
