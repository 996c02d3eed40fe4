package database

import (
	"context"
	"testing"

	"bloom-monitor/config"
	"bloom-monitor/models"
)

func TestNewDatabaseSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBPath:       "file::memory:?cache=shared",
		DBMaxRetries: 1,
	}

	d, err := NewDatabase(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	defer d.Close()

	if d.Connector.State() != StateConnected {
		t.Errorf("Expected connected, got %s", d.Connector.State())
	}

	ctx := context.Background()
	asset := &models.Asset{Location: "Rack C3", AssetType: models.AssetTypeServer}
	if err := d.AssetRepo.Create(ctx, asset); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := d.AssetRepo.GetByID(ctx, asset.ID); err != nil {
		t.Errorf("GetByID failed: %v", err)
	}
}

func TestDialector(t *testing.T) {
	if _, err := Dialector(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Error("Expected unsupported driver to be rejected")
	}
	d, err := Dialector(&config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432"})
	if err != nil || d.Name() != "postgres" {
		t.Errorf("Expected postgres dialector, got %v %v", d, err)
	}
	d, err = Dialector(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	if err != nil || d.Name() != "sqlite" {
		t.Errorf("Expected sqlite dialector, got %v %v", d, err)
	}
}
