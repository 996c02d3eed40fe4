package handlers

import (
	"context"

	"bloom-monitor/handlers/base"
	"bloom-monitor/models"
	"bloom-monitor/services"

	"github.com/labstack/echo/v4"
)

// AlertHandler serves the alert lifecycle endpoints.
type AlertHandler struct {
	alertService *services.AlertService
}

func NewAlertHandler(alertService *services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// ===================================================================
// QUERIES
// ===================================================================

// ListAlerts returns every alert, newest first.
func (h *AlertHandler) ListAlerts(c echo.Context) error {
	alerts, err := h.alertService.GetAlerts(c.Request().Context())
	return base.SendListResult(c, alerts, len(alerts), err, "Alerts retrieved successfully")
}

// ListActiveAlerts returns alerts that are not resolved.
func (h *AlertHandler) ListActiveAlerts(c echo.Context) error {
	alerts, err := h.alertService.GetActiveAlerts(c.Request().Context())
	return base.SendListResult(c, alerts, len(alerts), err, "Active alerts retrieved successfully")
}

// ===================================================================
// LIFECYCLE
// ===================================================================

// MarkAsRead flags an alert as read.
func (h *AlertHandler) MarkAsRead(c echo.Context) error {
	return h.transition(c, h.alertService.MarkAsRead, "Alert marked as read")
}

// Acknowledge moves an alert to acknowledged.
func (h *AlertHandler) Acknowledge(c echo.Context) error {
	return h.transition(c, h.alertService.Acknowledge, "Alert acknowledged")
}

// Resolve moves an alert to resolved.
func (h *AlertHandler) Resolve(c echo.Context) error {
	return h.transition(c, h.alertService.ResolveAlert, "Alert resolved")
}

// UpdateAlert applies a partial status/read patch.
func (h *AlertHandler) UpdateAlert(c echo.Context) error {
	id, err := base.ExtractStringParam(c, "id", true)
	if err != nil {
		return err
	}

	var patch models.AlertPatch
	if err := base.BindAndValidateJSON(c, &patch); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return base.BadRequestError("at least one of status or read is required")
	}

	alert, err := h.alertService.UpdateAlert(c.Request().Context(), id, patch)
	return base.SendRepositoryResult(c, alert, err, "Alert updated")
}

func (h *AlertHandler) transition(c echo.Context, op func(context.Context, string) (*models.Alert, error), message string) error {
	id, err := base.ExtractStringParam(c, "id", true)
	if err != nil {
		return err
	}
	alert, err := op(c.Request().Context(), id)
	return base.SendRepositoryResult(c, alert, err, message)
}

// ===================================================================
// TEST ALERTS
// ===================================================================

// CreateTestAlert raises a canned temperature warning.
func (h *AlertHandler) CreateTestAlert(c echo.Context) error {
	alert, err := h.alertService.CreateTestAlert(c.Request().Context())
	return h.sendRaised(c, alert, err)
}

// CreateRandomTestAlert raises an alert of random type and severity.
func (h *AlertHandler) CreateRandomTestAlert(c echo.Context) error {
	alert, err := h.alertService.CreateRandomTestAlert(c.Request().Context())
	return h.sendRaised(c, alert, err)
}

// sendRaised treats a persisted alert as success even when its broadcast failed.
func (h *AlertHandler) sendRaised(c echo.Context, alert *models.Alert, err error) error {
	if alert == nil {
		return base.HandleRepositoryError(c, err)
	}
	return base.SendCreatedJSON(c, "Test alert created", alert)
}
