package services

import (
	"context"
	"testing"

	"bloom-monitor/models"
	"bloom-monitor/repositories"
)

func TestHealthService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	assetRepo := repositories.NewAssetRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	svc := NewHealthService(assetRepo, alertRepo)

	t.Run("Empty Fleet", func(t *testing.T) {
		overview, err := svc.Overview(ctx)
		if err != nil {
			t.Fatalf("Overview failed: %v", err)
		}
		if overview.TotalAssets != 0 || overview.Averages.Temperature != nil {
			t.Errorf("Expected empty overview with null means, got %+v", overview)
		}
	})

	a := &models.Asset{Location: "Hall 1", AssetType: models.AssetTypeServer}
	b := &models.Asset{Location: "Hall 1", AssetType: models.AssetTypeStorage}
	c := &models.Asset{Location: "Hall 2", AssetType: models.AssetTypeServer}
	for _, asset := range []*models.Asset{a, b, c} {
		if err := assetRepo.Create(ctx, asset); err != nil {
			t.Fatalf("Create asset failed: %v", err)
		}
	}
	appendReading := func(id string, r models.Reading) {
		if _, err := assetRepo.AppendReading(ctx, nil, id, &r); err != nil {
			t.Fatalf("AppendReading failed: %v", err)
		}
	}
	appendReading(a.ID, models.Reading{Temperature: float64Ptr(99)})
	appendReading(a.ID, models.Reading{Temperature: float64Ptr(22), Humidity: float64Ptr(40)})
	appendReading(b.ID, models.Reading{Temperature: float64Ptr(29)})

	critical, err := alertRepo.Create(ctx, &models.Alert{DatacenterID: &a.ID, Type: models.AlertTypeTemperature, Severity: models.SeverityCritical, Message: "hot"})
	if err != nil {
		t.Fatalf("Create alert failed: %v", err)
	}
	if _, err := alertRepo.Create(ctx, &models.Alert{DatacenterID: &b.ID, Type: models.AlertTypeHumidity, Severity: models.SeverityWarning, Message: "damp"}); err != nil {
		t.Fatalf("Create alert failed: %v", err)
	}
	resolved, err := alertRepo.Create(ctx, &models.Alert{DatacenterID: &c.ID, Type: models.AlertTypePower, Severity: models.SeverityCritical, Message: "spike"})
	if err != nil {
		t.Fatalf("Create alert failed: %v", err)
	}
	if _, err := alertRepo.Resolve(ctx, resolved.ID); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	t.Run("Overview Uses Latest Readings Only", func(t *testing.T) {
		overview, err := svc.Overview(ctx)
		if err != nil {
			t.Fatalf("Overview failed: %v", err)
		}
		if overview.TotalAssets != 3 {
			t.Errorf("Expected 3 assets, got %d", overview.TotalAssets)
		}
		if overview.AssetsByType[models.AssetTypeServer] != 2 || overview.AssetsByType[models.AssetTypeStorage] != 1 {
			t.Errorf("Unexpected counts by type %v", overview.AssetsByType)
		}
		if overview.Averages.Temperature == nil || *overview.Averages.Temperature != 25.5 {
			t.Errorf("Expected mean temperature 25.5, got %v", overview.Averages.Temperature)
		}
		if overview.Averages.TemperatureSamples != 2 {
			t.Errorf("Expected 2 temperature samples, got %d", overview.Averages.TemperatureSamples)
		}
		if overview.Averages.Humidity == nil || *overview.Averages.Humidity != 40 {
			t.Errorf("Expected mean humidity 40, got %v", overview.Averages.Humidity)
		}
		if overview.Averages.PowerDraw != nil {
			t.Errorf("Expected null power mean, got %v", *overview.Averages.PowerDraw)
		}
		if overview.ActiveAlerts.Total != 2 || overview.ActiveAlerts.BySeverity[models.SeverityCritical] != 1 {
			t.Errorf("Unexpected active alert counts %+v", overview.ActiveAlerts)
		}
	})

	t.Run("By Location", func(t *testing.T) {
		locations, err := svc.ByLocation(ctx)
		if err != nil {
			t.Fatalf("ByLocation failed: %v", err)
		}
		if len(locations) != 2 || locations[0].Location != "Hall 1" || locations[1].Location != "Hall 2" {
			t.Fatalf("Expected Hall 1 and Hall 2, got %+v", locations)
		}
		if locations[0].TotalAssets != 2 || locations[0].ActiveAlerts.Total != 2 {
			t.Errorf("Unexpected Hall 1 summary %+v", locations[0].HealthOverview)
		}
		if locations[1].Averages.Temperature != nil || locations[1].ActiveAlerts.Total != 0 {
			t.Errorf("Unexpected Hall 2 summary %+v", locations[1].HealthOverview)
		}
	})

	t.Run("Asset Health Status", func(t *testing.T) {
		health, err := svc.AssetHealth(ctx)
		if err != nil {
			t.Fatalf("AssetHealth failed: %v", err)
		}
		status := map[string]models.AssetHealthStatus{}
		for _, h := range health {
			status[h.ID] = h.Status
		}
		if status[a.ID] != models.AssetCritical {
			t.Errorf("Expected %s critical, got %s", a.ID, status[a.ID])
		}
		if status[b.ID] != models.AssetWarning {
			t.Errorf("Expected %s warning, got %s", b.ID, status[b.ID])
		}
		if status[c.ID] != models.AssetHealthy {
			t.Errorf("Expected %s healthy, got %s", c.ID, status[c.ID])
		}

		if _, err := alertRepo.Resolve(ctx, critical.ID); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		health, err = svc.AssetHealth(ctx)
		if err != nil {
			t.Fatalf("AssetHealth failed: %v", err)
		}
		for _, h := range health {
			if h.ID == a.ID && h.Status != models.AssetHealthy {
				t.Errorf("Expected asset to be healthy after resolve, got %s", h.Status)
			}
		}
	})
}
