package repositories

import (
	"context"
	"testing"
	"time"

	"bloom-monitor/models"
	"bloom-monitor/repositories/base"
)

func TestAssetRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAssetRepository(db)

	asset := &models.Asset{
		Location:  "Rack A1",
		AssetType: models.AssetTypeServer,
		ProductID: stringPtr("SRV-001"),
	}
	if err := repo.Create(ctx, asset); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if asset.ID == "" {
		t.Fatal("Expected an ID to be assigned on create")
	}

	t.Run("Get Unknown Asset", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "does-not-exist")
		if !base.IsEntityNotFound(err) {
			t.Fatalf("Expected EntityNotFoundError, got %v", err)
		}
	})

	t.Run("Append Readings In Order", func(t *testing.T) {
		first := &models.Reading{Temperature: float64Ptr(22.5)}
		if _, err := repo.AppendReading(ctx, nil, asset.ID, first); err != nil {
			t.Fatalf("AppendReading failed: %v", err)
		}
		if first.Timestamp.IsZero() {
			t.Error("Expected timestamp to default to now")
		}

		ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		second := &models.Reading{Humidity: float64Ptr(45), SmokeLevel: intPtr(0), Timestamp: ts}
		updated, err := repo.AppendReading(ctx, nil, asset.ID, second)
		if err != nil {
			t.Fatalf("AppendReading failed: %v", err)
		}

		if len(updated.Readings) != 2 {
			t.Fatalf("Expected 2 readings, got %d", len(updated.Readings))
		}
		latest := updated.LatestReading()
		if latest == nil || latest.Humidity == nil || *latest.Humidity != 45 {
			t.Errorf("Expected latest reading to be the second one, got %+v", latest)
		}
		if latest.Temperature != nil {
			t.Errorf("Expected absent temperature to stay absent, got %v", *latest.Temperature)
		}
		if !latest.Timestamp.Equal(ts) {
			t.Errorf("Expected supplied timestamp %v, got %v", ts, latest.Timestamp)
		}
	})

	t.Run("Append To Unknown Asset", func(t *testing.T) {
		_, err := repo.AppendReading(ctx, nil, "missing", &models.Reading{Temperature: float64Ptr(20)})
		if !base.IsEntityNotFound(err) {
			t.Fatalf("Expected EntityNotFoundError, got %v", err)
		}
	})

	t.Run("Append Within Rolled Back Transaction", func(t *testing.T) {
		before, err := repo.GetByID(ctx, asset.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}

		tx := db.Begin()
		if _, err := repo.AppendReading(ctx, tx, asset.ID, &models.Reading{PowerDraw: float64Ptr(900)}); err != nil {
			t.Fatalf("AppendReading failed: %v", err)
		}
		tx.Rollback()

		after, err := repo.GetByID(ctx, asset.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if len(after.Readings) != len(before.Readings) {
			t.Errorf("Expected %d readings after rollback, got %d", len(before.Readings), len(after.Readings))
		}
	})

	t.Run("List With Latest Reading", func(t *testing.T) {
		empty := &models.Asset{Location: "Rack B2", AssetType: models.AssetTypeStorage}
		if err := repo.Create(ctx, empty); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		list, err := repo.ListWithLatestReading(ctx)
		if err != nil {
			t.Fatalf("ListWithLatestReading failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 assets, got %d", len(list))
		}

		byID := map[string]models.AssetWithLatest{}
		for _, a := range list {
			byID[a.ID] = a
		}
		if byID[empty.ID].LatestReading != nil {
			t.Error("Expected no latest reading for an asset without readings")
		}
		if l := byID[asset.ID].LatestReading; l == nil || l.Humidity == nil {
			t.Errorf("Expected latest reading with humidity, got %+v", l)
		}
	})
}
