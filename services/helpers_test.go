package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"bloom-monitor/models"
	"bloom-monitor/repositories/interfaces"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Asset{}, &models.Reading{}, &models.Alert{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type emitted struct {
	Room  string
	Event string
	Data  models.AlertEvent
}

// recordingEmitter stores every event it is asked to deliver.
type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (r *recordingEmitter) Emit(event string, payload any) error {
	return r.EmitToRoom("", event, payload)
}

func (r *recordingEmitter) EmitToRoom(room, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	evt, _ := payload.(models.AlertEvent)
	r.events = append(r.events, emitted{Room: room, Event: event, Data: evt})
	return nil
}

func (r *recordingEmitter) named(event string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

// flakyAlertRepo fails every Create after the first okCreates calls.
type flakyAlertRepo struct {
	interfaces.AlertRepositoryInterface
	okCreates int
	calls     int
}

func (f *flakyAlertRepo) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	f.calls++
	if f.calls > f.okCreates {
		return nil, errStoreDown
	}
	return f.AlertRepositoryInterface.Create(ctx, alert)
}

// fixedDebouncer allows a type only once per asset.
type fixedDebouncer struct {
	seen map[string]bool
}

func (d *fixedDebouncer) Allow(_ context.Context, assetID string, alertType models.AlertType) (bool, error) {
	key := assetID + ":" + string(alertType)
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}
