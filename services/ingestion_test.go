package services

import (
	"context"
	"errors"
	"testing"

	"bloom-monitor/database"
	"bloom-monitor/models"
	"bloom-monitor/repositories"
	"bloom-monitor/repositories/base"
)

func TestIngestionService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	assetRepo := repositories.NewAssetRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	uow := database.NewUnitOfWork(db)

	asset := &models.Asset{Location: "Rack A1", AssetType: models.AssetTypeServer}
	if err := assetRepo.Create(ctx, asset); err != nil {
		t.Fatalf("Create asset failed: %v", err)
	}

	t.Run("Three Breaches Raise Three Alerts", func(t *testing.T) {
		emitter := &recordingEmitter{}
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, emitter, discardLogger()), nil, discardLogger())

		result, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{
			Temperature: float64Ptr(35),
			Humidity:    float64Ptr(80),
			PowerDraw:   float64Ptr(1200),
		})
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if len(result.TriggeredAlerts) != 3 {
			t.Fatalf("Expected 3 alerts, got %d", len(result.TriggeredAlerts))
		}
		wantTypes := []models.AlertType{models.AlertTypeTemperature, models.AlertTypeHumidity, models.AlertTypePower}
		for i, a := range result.TriggeredAlerts {
			if a.Type != wantTypes[i] {
				t.Errorf("Alert %d: expected %s, got %s", i, wantTypes[i], a.Type)
			}
			if a.DatacenterID == nil || *a.DatacenterID != asset.ID {
				t.Errorf("Alert %d not linked to asset", i)
			}
		}
		if got := len(emitter.named(models.EventNewAlert)); got != 3 {
			t.Errorf("Expected 3 new-alert events, got %d", got)
		}
		if got := len(emitter.named(models.EventITAlert)); got != 3 {
			t.Errorf("Expected 3 it-alert events, got %d", got)
		}
		if result.Asset == nil || result.Asset.LatestReading() == nil {
			t.Fatal("Expected asset with the new reading")
		}
	})

	t.Run("Normal Reading Raises Nothing", func(t *testing.T) {
		emitter := &recordingEmitter{}
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, emitter, discardLogger()), nil, discardLogger())

		result, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{Temperature: float64Ptr(22), Humidity: float64Ptr(45)})
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if len(result.TriggeredAlerts) != 0 || len(emitter.events) != 0 {
			t.Errorf("Expected no alerts and no events, got %d and %d", len(result.TriggeredAlerts), len(emitter.events))
		}
	})

	t.Run("Repeated Breach Is Not Deduplicated", func(t *testing.T) {
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, nil, discardLogger()), nil, discardLogger())
		for i := 0; i < 2; i++ {
			result, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{SmokeLevel: intPtr(1)})
			if err != nil {
				t.Fatalf("Ingest #%d failed: %v", i+1, err)
			}
			if len(result.TriggeredAlerts) != 1 {
				t.Errorf("Ingest #%d: expected 1 alert, got %d", i+1, len(result.TriggeredAlerts))
			}
		}
	})

	t.Run("Debouncer Suppresses Repeats", func(t *testing.T) {
		deb := &fixedDebouncer{seen: map[string]bool{}}
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, nil, discardLogger()), deb, discardLogger())

		first, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{PowerDraw: float64Ptr(1500)})
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		second, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{PowerDraw: float64Ptr(1600)})
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if len(first.TriggeredAlerts) != 1 || len(second.TriggeredAlerts) != 0 {
			t.Errorf("Expected 1 then 0 alerts, got %d then %d", len(first.TriggeredAlerts), len(second.TriggeredAlerts))
		}
	})

	t.Run("Unknown Asset", func(t *testing.T) {
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, nil, discardLogger()), nil, discardLogger())
		_, err := svc.Ingest(ctx, "missing", models.ReadingInput{Temperature: float64Ptr(40)})
		if !base.IsEntityNotFound(err) {
			t.Fatalf("Expected EntityNotFoundError, got %v", err)
		}
	})

	t.Run("Invalid Input", func(t *testing.T) {
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, nil, discardLogger()), nil, discardLogger())
		_, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{})
		if !base.IsValidationError(err) {
			t.Errorf("Expected ValidationError for empty reading, got %v", err)
		}
		_, err = svc.Ingest(ctx, asset.ID, models.ReadingInput{SmokeLevel: intPtr(3)})
		if !base.IsValidationError(err) {
			t.Errorf("Expected ValidationError for smokeLevel 3, got %v", err)
		}
	})

	t.Run("Store Failure Aborts Remaining Alerts", func(t *testing.T) {
		flaky := &flakyAlertRepo{AlertRepositoryInterface: alertRepo, okCreates: 1}
		svc := NewIngestionService(assetRepo, uow, NewAlertService(flaky, nil, discardLogger()), nil, discardLogger())

		before, err := assetRepo.GetByID(ctx, asset.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}

		result, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{
			Temperature: float64Ptr(35),
			Humidity:    float64Ptr(80),
			PowerDraw:   float64Ptr(1200),
		})
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("Expected store error, got %v", err)
		}
		if flaky.calls != 2 {
			t.Errorf("Expected creation to stop after the failing call, got %d calls", flaky.calls)
		}
		if result == nil || len(result.TriggeredAlerts) != 1 {
			t.Errorf("Expected the first alert to survive, got %+v", result)
		}

		after, err := assetRepo.GetByID(ctx, asset.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if len(after.Readings) != len(before.Readings)+1 {
			t.Errorf("Expected the reading to stay committed, got %d readings (was %d)", len(after.Readings), len(before.Readings))
		}
	})

	t.Run("Broadcast Failure Continues", func(t *testing.T) {
		failing := &recordingEmitter{err: errors.New("hub gone")}
		svc := NewIngestionService(assetRepo, uow, NewAlertService(alertRepo, failing, discardLogger()), nil, discardLogger())

		result, err := svc.Ingest(ctx, asset.ID, models.ReadingInput{Temperature: float64Ptr(31), SmokeLevel: intPtr(1)})
		if err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
		if len(result.TriggeredAlerts) != 2 {
			t.Errorf("Expected 2 stored alerts, got %d", len(result.TriggeredAlerts))
		}
	})
}
