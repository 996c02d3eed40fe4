package services

import (
	"context"
	"fmt"
	"log/slog"

	"bloom-monitor/database"
	"bloom-monitor/models"
	"bloom-monitor/repositories/base"
	"bloom-monitor/repositories/interfaces"

	"gorm.io/gorm"
)

// IngestionService stores telemetry readings and raises the alerts they trigger.
type IngestionService struct {
	assetRepo    interfaces.AssetRepositoryInterface
	uow          database.UnitOfWorkInterface
	alertService *AlertService
	debouncer    Debouncer
	logger       *slog.Logger
}

func NewIngestionService(
	assetRepo interfaces.AssetRepositoryInterface,
	uow database.UnitOfWorkInterface,
	alertService *AlertService,
	debouncer Debouncer,
	logger *slog.Logger,
) *IngestionService {
	if debouncer == nil {
		debouncer = noDebounce{}
	}
	return &IngestionService{
		assetRepo:    assetRepo,
		uow:          uow,
		alertService: alertService,
		debouncer:    debouncer,
		logger:       logger.With("service", "ingestion_service"),
	}
}

// Ingest appends in to the asset's readings and raises one alert per breached
// threshold. The reading is committed before any alert is created and is never
// rolled back. A store failure while creating alerts stops the remaining
// candidates and is returned; a broadcast failure is logged and skipped.
func (is *IngestionService) Ingest(ctx context.Context, assetID string, in models.ReadingInput) (*models.IngestResult, error) {
	if field, err := in.Validate(); err != nil {
		return nil, base.NewValidationError(field, "", err.Error())
	}

	reading := in.ToReading()
	var asset *models.Asset
	err := is.uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		asset, err = is.assetRepo.AppendReading(ctx, tx, assetID, &reading)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger := is.logger.With("assetId", assetID)
	result := &models.IngestResult{
		Asset:           asset,
		Reading:         reading,
		TriggeredAlerts: []*models.Alert{},
	}

	for _, c := range Evaluate(in) {
		allowed, err := is.debouncer.Allow(ctx, assetID, c.Type)
		if err != nil {
			logger.Warn("Debounce check failed, raising alert anyway", "type", c.Type, slog.Any("error", err))
		} else if !allowed {
			logger.Info("Alert suppressed by debounce window", "type", c.Type)
			continue
		}

		id := assetID
		alert, err := is.alertService.EmitNewAlert(ctx, &models.Alert{
			DatacenterID: &id,
			Type:         c.Type,
			Severity:     c.Severity,
			Message:      c.Message,
		})
		if alert == nil {
			return result, fmt.Errorf("create %s alert for asset %s: %w", c.Type, assetID, err)
		}
		if err != nil {
			logger.Error("Alert stored but broadcast failed", "alertId", alert.ID, slog.Any("error", err))
		}
		result.TriggeredAlerts = append(result.TriggeredAlerts, alert)
	}

	return result, nil
}
