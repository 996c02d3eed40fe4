package redis

import (
	"context"
	"fmt"
	"time"

	"bloom-monitor/models"
)

// AlertDebouncer remembers raised alerts for a window using SETNX with a TTL.
type AlertDebouncer struct {
	rc     *RedisClient
	window time.Duration
}

func NewAlertDebouncer(rc *RedisClient, window time.Duration) *AlertDebouncer {
	return &AlertDebouncer{rc: rc, window: window}
}

// Allow reports true for the first candidate of (asset, type) in the window.
func (d *AlertDebouncer) Allow(ctx context.Context, assetID string, alertType models.AlertType) (bool, error) {
	if d.window <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("bloom:alert:debounce:%s:%s", assetID, alertType)
	ok, err := d.rc.client.SetNX(ctx, key, time.Now().Unix(), d.window).Result()
	if err != nil {
		return true, fmt.Errorf("failed to check debounce key %s: %w", key, err)
	}
	return ok, nil
}
