package services

import (
	"testing"

	"bloom-monitor/models"
)

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

func TestEvaluate(t *testing.T) {
	t.Run("Values At Limits Do Not Trigger", func(t *testing.T) {
		got := Evaluate(models.ReadingInput{
			Temperature: float64Ptr(30),
			Humidity:    float64Ptr(70),
			PowerDraw:   float64Ptr(1000),
			SmokeLevel:  intPtr(0),
		})
		if len(got) != 0 {
			t.Errorf("Expected no candidates, got %+v", got)
		}
	})

	t.Run("Just Above Temperature Limit", func(t *testing.T) {
		got := Evaluate(models.ReadingInput{Temperature: float64Ptr(30.5)})
		if len(got) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(got))
		}
		if got[0].Type != models.AlertTypeTemperature || got[0].Severity != models.SeverityCritical {
			t.Errorf("Expected temperature/critical, got %s/%s", got[0].Type, got[0].Severity)
		}
		want := "Temperature exceeded 30°C (current: 30.5°C)"
		if got[0].Message != want {
			t.Errorf("Expected message %q, got %q", want, got[0].Message)
		}
	})

	t.Run("Three Breaches In Order", func(t *testing.T) {
		got := Evaluate(models.ReadingInput{
			Temperature: float64Ptr(35),
			Humidity:    float64Ptr(80),
			PowerDraw:   float64Ptr(1200),
		})
		want := []models.AlertCandidate{
			{Type: models.AlertTypeTemperature, Severity: models.SeverityCritical, Message: "Temperature exceeded 30°C (current: 35°C)"},
			{Type: models.AlertTypeHumidity, Severity: models.SeverityWarning, Message: "Humidity exceeded 70% (current: 80%)"},
			{Type: models.AlertTypePower, Severity: models.SeverityWarning, Message: "Power draw exceeded 1000W (current: 1200W)"},
		}
		if len(got) != len(want) {
			t.Fatalf("Expected %d candidates, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Candidate %d: expected %+v, got %+v", i, want[i], got[i])
			}
		}
	})

	t.Run("Smoke High", func(t *testing.T) {
		got := Evaluate(models.ReadingInput{SmokeLevel: intPtr(1)})
		if len(got) != 1 || got[0].Type != models.AlertTypeSmoke || got[0].Severity != models.SeverityCritical {
			t.Fatalf("Expected a single smoke/critical candidate, got %+v", got)
		}
		if got[0].Message != "Smoke level is high" {
			t.Errorf("Unexpected smoke message %q", got[0].Message)
		}
	})

	t.Run("Empty Reading", func(t *testing.T) {
		if got := Evaluate(models.ReadingInput{}); len(got) != 0 {
			t.Errorf("Expected no candidates for empty reading, got %+v", got)
		}
	})
}
