package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"bloom-monitor/broadcast"
	"bloom-monitor/models"
	"bloom-monitor/repositories/interfaces"
)

// canned messages used by the test alert generators
var testAlertMessages = map[models.AlertType]string{
	models.AlertTypeTemperature: "Test alert: temperature above normal operating range",
	models.AlertTypeHumidity:    "Test alert: humidity above normal operating range",
	models.AlertTypePower:       "Test alert: power draw spike detected",
	models.AlertTypeSecurity:    "Test alert: unauthorized rack access detected",
	models.AlertTypeSmoke:       "Test alert: smoke detected in server room",
}

// AlertService persists alerts and broadcasts their lifecycle events.
type AlertService struct {
	alertRepo interfaces.AlertRepositoryInterface
	emitter   broadcast.Emitter
	logger    *slog.Logger

	randMu sync.Mutex
	rnd    *rand.Rand
}

func NewAlertService(
	alertRepo interfaces.AlertRepositoryInterface,
	emitter broadcast.Emitter,
	logger *slog.Logger,
) *AlertService {
	if emitter == nil {
		emitter = broadcast.Nop{}
	}
	return &AlertService{
		alertRepo: alertRepo,
		emitter:   emitter,
		logger:    logger.With("service", "alert_service"),
		rnd:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// EmitNewAlert stores alert and announces it to every subscriber and to the
// IT dashboard room. When the store succeeded the persisted alert is always
// returned; a broadcast failure comes back as the error next to it.
func (as *AlertService) EmitNewAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	created, err := as.alertRepo.Create(ctx, alert)
	if err != nil {
		return nil, err
	}

	// Both emits are attempted; one transport failing must not hide the room event.
	var errs []error
	evt := models.NewAlertEvent(models.EventNewAlert, created)
	if err := as.emitter.Emit(models.EventNewAlert, evt); err != nil {
		errs = append(errs, fmt.Errorf("broadcast %s for alert %s: %w", models.EventNewAlert, created.ID, err))
	}
	roomEvt := models.NewAlertEvent(models.EventITAlert, created)
	if err := as.emitter.EmitToRoom(models.RoomITDashboard, models.EventITAlert, roomEvt); err != nil {
		errs = append(errs, fmt.Errorf("broadcast %s for alert %s: %w", models.EventITAlert, created.ID, err))
	}

	as.logger.Info("Alert raised", "alertId", created.ID, "type", created.Type, "severity", created.Severity)
	return created, errors.Join(errs...)
}

// UpdateAlert applies patch and broadcasts alert-update.
func (as *AlertService) UpdateAlert(ctx context.Context, id string, patch models.AlertPatch) (*models.Alert, error) {
	updated, err := as.alertRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	as.announce(models.EventAlertUpdate, updated)
	return updated, nil
}

// ResolveAlert resolves the alert and broadcasts alert-resolved. Resolving an
// already resolved alert succeeds and broadcasts again.
func (as *AlertService) ResolveAlert(ctx context.Context, id string) (*models.Alert, error) {
	resolved, err := as.alertRepo.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	as.announce(models.EventAlertResolved, resolved)
	return resolved, nil
}

// MarkAsRead sets read=true.
func (as *AlertService) MarkAsRead(ctx context.Context, id string) (*models.Alert, error) {
	read := true
	return as.UpdateAlert(ctx, id, models.AlertPatch{Read: &read})
}

// Acknowledge moves a new alert to acknowledged.
func (as *AlertService) Acknowledge(ctx context.Context, id string) (*models.Alert, error) {
	status := models.AlertStatusAcknowledged
	return as.UpdateAlert(ctx, id, models.AlertPatch{Status: &status})
}

func (as *AlertService) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	return as.alertRepo.ListAll(ctx)
}

func (as *AlertService) GetActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	return as.alertRepo.ListActive(ctx)
}

// CreateTestAlert raises a fixed temperature warning not tied to any asset.
func (as *AlertService) CreateTestAlert(ctx context.Context) (*models.Alert, error) {
	return as.EmitNewAlert(ctx, &models.Alert{
		Type:     models.AlertTypeTemperature,
		Severity: models.SeverityWarning,
		Message:  testAlertMessages[models.AlertTypeTemperature],
	})
}

// CreateRandomTestAlert raises an alert with a uniformly chosen type and severity.
func (as *AlertService) CreateRandomTestAlert(ctx context.Context) (*models.Alert, error) {
	as.randMu.Lock()
	alertType := models.AllAlertTypes[as.rnd.Intn(len(models.AllAlertTypes))]
	severity := models.AllSeverities[as.rnd.Intn(len(models.AllSeverities))]
	as.randMu.Unlock()

	return as.EmitNewAlert(ctx, &models.Alert{
		Type:     alertType,
		Severity: severity,
		Message:  testAlertMessages[alertType],
	})
}

// announce logs instead of failing: the store change already happened.
func (as *AlertService) announce(event string, alert *models.Alert) {
	if err := as.emitter.Emit(event, models.NewAlertEvent(event, alert)); err != nil {
		as.logger.Warn("Failed to broadcast alert event", "event", event, "alertId", alert.ID, slog.Any("error", err))
	}
}
