package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertType identifies the monitored condition that raised an alert.
type AlertType string

const (
	AlertTypeTemperature AlertType = "temperature"
	AlertTypeHumidity    AlertType = "humidity"
	AlertTypePower       AlertType = "power"
	AlertTypeSecurity    AlertType = "security"
	AlertTypeSmoke       AlertType = "smoke"
)

// AllAlertTypes lists every alert type in a stable order.
var AllAlertTypes = []AlertType{
	AlertTypeTemperature,
	AlertTypeHumidity,
	AlertTypePower,
	AlertTypeSecurity,
	AlertTypeSmoke,
}

func (t AlertType) IsValid() bool {
	for _, v := range AllAlertTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Severity of an alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AllSeverities lists every severity in a stable order.
var AllSeverities = []Severity{SeverityWarning, SeverityCritical}

func (s Severity) IsValid() bool {
	return s == SeverityWarning || s == SeverityCritical
}

// AlertStatus is the lifecycle state of an alert. Resolved is terminal.
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "new"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

func (s AlertStatus) IsValid() bool {
	return s == AlertStatusNew || s == AlertStatusAcknowledged || s == AlertStatusResolved
}

// CanTransitionTo reports whether an alert in status s may move to next.
// Staying in the same status is always allowed.
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case AlertStatusNew:
		return next == AlertStatusAcknowledged || next == AlertStatusResolved
	case AlertStatusAcknowledged:
		return next == AlertStatusResolved
	default:
		return false
	}
}

// Alert is a persisted notification of a threshold breach. Message, Type and
// Severity are fixed at creation; Status and Read are independent axes.
type Alert struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	DatacenterID *string     `gorm:"size:36;index" json:"datacenterId"`
	Type         AlertType   `gorm:"size:16;not null;index" json:"type"`
	Severity     Severity    `gorm:"size:16;not null" json:"severity"`
	Message      string      `gorm:"not null" json:"message"`
	Status       AlertStatus `gorm:"size:16;not null;default:new;index" json:"status"`
	Read         bool        `gorm:"not null;default:false" json:"read"`
	Timestamp    time.Time   `gorm:"not null;index" json:"timestamp"`
	ResolvedAt   *time.Time  `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (Alert) TableName() string {
	return "alerts"
}

// BeforeCreate fills the identity and lifecycle defaults.
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = AlertStatusNew
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return nil
}

// IsActive reports whether the alert still needs attention.
func (a *Alert) IsActive() bool {
	return a.Status != AlertStatusResolved
}

// AlertCandidate is a triggered condition not yet persisted.
type AlertCandidate struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// AlertPatch carries the mutable fields of an alert. Nil fields are left untouched.
type AlertPatch struct {
	Status *AlertStatus `json:"status,omitempty"`
	Read   *bool        `json:"read,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AlertPatch) IsEmpty() bool {
	return p.Status == nil && p.Read == nil
}

// Real-time event names.
const (
	EventNewAlert      = "new-alert"
	EventITAlert       = "it-alert"
	EventAlertUpdate   = "alert-update"
	EventAlertResolved = "alert-resolved"

	RoomITDashboard = "it-dashboard"
)

// AlertEvent is the payload carried by every alert broadcast.
type AlertEvent struct {
	Alert     *Alert    `json:"alert"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"eventType"`
	Type      AlertType `json:"type"`
}

// NewAlertEvent builds the broadcast payload for alert under eventType.
func NewAlertEvent(eventType string, alert *Alert) AlertEvent {
	return AlertEvent{
		Alert:     alert,
		Timestamp: time.Now(),
		EventType: eventType,
		Type:      alert.Type,
	}
}
