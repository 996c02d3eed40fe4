package services

import (
	"fmt"
	"strconv"

	"bloom-monitor/models"
)

// Alert thresholds. A metric triggers when it is strictly above its limit;
// smoke triggers on the binary high level.
const (
	TemperatureLimit = 30.0
	HumidityLimit    = 70.0
	PowerDrawLimit   = 1000.0
	SmokeHigh        = 1
)

// Evaluate returns one candidate per breached threshold, in the order
// temperature, humidity, power, smoke. Absent metrics never trigger.
func Evaluate(in models.ReadingInput) []models.AlertCandidate {
	var candidates []models.AlertCandidate

	if in.Temperature != nil && *in.Temperature > TemperatureLimit {
		candidates = append(candidates, models.AlertCandidate{
			Type:     models.AlertTypeTemperature,
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Temperature exceeded 30°C (current: %s°C)", formatValue(*in.Temperature)),
		})
	}

	if in.Humidity != nil && *in.Humidity > HumidityLimit {
		candidates = append(candidates, models.AlertCandidate{
			Type:     models.AlertTypeHumidity,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Humidity exceeded 70%% (current: %s%%)", formatValue(*in.Humidity)),
		})
	}

	if in.PowerDraw != nil && *in.PowerDraw > PowerDrawLimit {
		candidates = append(candidates, models.AlertCandidate{
			Type:     models.AlertTypePower,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("Power draw exceeded 1000W (current: %sW)", formatValue(*in.PowerDraw)),
		})
	}

	if in.SmokeLevel != nil && *in.SmokeLevel == SmokeHigh {
		candidates = append(candidates, models.AlertCandidate{
			Type:     models.AlertTypeSmoke,
			Severity: models.SeverityCritical,
			Message:  "Smoke level is high",
		})
	}

	return candidates
}

// formatValue renders v with the fewest digits that round-trip, so 35 prints
// as "35" and 30.5 as "30.5".
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
