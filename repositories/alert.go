package repositories

import (
	"context"
	"fmt"
	"time"

	"bloom-monitor/models"
	"bloom-monitor/repositories/base"
	"bloom-monitor/repositories/interfaces"

	"gorm.io/gorm"
)

// AlertRepository implements AlertRepositoryInterface
type AlertRepository struct {
	crud *base.BaseCRUDRepository[models.Alert]
}

// NewAlertRepository creates a new instance of AlertRepository
func NewAlertRepository(db *gorm.DB) interfaces.AlertRepositoryInterface {
	return &AlertRepository{
		crud: base.NewBaseCRUDRepository[models.Alert](db, "alerts"),
	}
}

// Create inserts an alert. Status defaults to new, read to false and the
// timestamp to now.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if !alert.Type.IsValid() {
		return nil, base.NewValidationError("type", string(alert.Type), "unknown alert type")
	}
	if !alert.Severity.IsValid() {
		return nil, base.NewValidationError("severity", string(alert.Severity), "unknown severity")
	}
	if alert.Message == "" {
		return nil, base.NewValidationError("message", "", "is required")
	}

	alert.Status = models.AlertStatusNew
	alert.Read = false
	alert.ResolvedAt = nil

	if err := r.crud.Create(ctx, nil, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// GetByID retrieves a single alert.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	return r.crud.GetByID(ctx, id)
}

// Update applies patch. A status change must follow the alert lifecycle;
// leaving resolved is rejected with InvalidTransitionError.
func (r *AlertRepository) Update(ctx context.Context, id string, patch models.AlertPatch) (*models.Alert, error) {
	current, err := r.crud.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.apply(ctx, current, patch)
}

// apply writes patch against the state read in current. Status changes only
// land while the row is not resolved, so a concurrent resolve between the read
// and the write is never overwritten.
func (r *AlertRepository) apply(ctx context.Context, current *models.Alert, patch models.AlertPatch) (*models.Alert, error) {
	if patch.IsEmpty() {
		return current, nil
	}

	id := current.ID
	updates := map[string]interface{}{}
	var guarded bool
	if patch.Status != nil {
		next := *patch.Status
		if !next.IsValid() {
			return nil, base.NewValidationError("status", string(next), "unknown status")
		}
		if !current.Status.CanTransitionTo(next) {
			return nil, base.NewInvalidTransitionError(id, string(current.Status), string(next))
		}
		if next != current.Status {
			updates["status"] = next
			guarded = true
			if next == models.AlertStatusResolved && current.ResolvedAt == nil {
				updates["resolved_at"] = time.Now()
			}
		}
	}
	if patch.Read != nil && *patch.Read != current.Read {
		updates["read"] = *patch.Read
	}

	if len(updates) == 0 {
		return current, nil
	}
	updates["updated_at"] = time.Now()

	if !guarded {
		if err := r.crud.UpdateFields(ctx, id, updates); err != nil {
			return nil, err
		}
		return r.crud.GetByID(ctx, id)
	}

	affected, err := r.crud.UpdateFieldsWhere(ctx, id, updates, "status <> ?", models.AlertStatusResolved)
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		return r.crud.GetByID(ctx, id)
	}

	// Nothing matched: the alert vanished or was resolved in the meantime.
	latest, err := r.crud.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if *patch.Status == models.AlertStatusResolved {
		// resolved concurrently; apply the rest of the patch to the resolved row
		return r.apply(ctx, latest, patch)
	}
	return nil, base.NewInvalidTransitionError(id, string(latest.Status), string(*patch.Status))
}

// Resolve marks an alert as resolved. An already resolved alert is returned unchanged.
func (r *AlertRepository) Resolve(ctx context.Context, id string) (*models.Alert, error) {
	status := models.AlertStatusResolved
	return r.Update(ctx, id, models.AlertPatch{Status: &status})
}

// ListAll returns every alert, newest first.
func (r *AlertRepository) ListAll(ctx context.Context) ([]models.Alert, error) {
	return r.crud.ListOrdered(ctx, newestFirst)
}

// ListActive returns every alert that is not resolved, newest first.
func (r *AlertRepository) ListActive(ctx context.Context) ([]models.Alert, error) {
	return r.crud.ListOrdered(ctx, newestFirst, activeAlerts)
}

// ListByAsset returns the alerts raised for assetID, newest first.
func (r *AlertRepository) ListByAsset(ctx context.Context, assetID string) ([]models.Alert, error) {
	if assetID == "" {
		return nil, fmt.Errorf("asset id is required")
	}
	return r.crud.ListOrdered(ctx, newestFirst, alertsForAsset(assetID))
}
