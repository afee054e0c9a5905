package access

import (
	"strings"
	"time"

	"github.com/rfsolutions/access-management/internal/auth"
)

// Outcome is the verdict of a single access attempt.
type Outcome string

const (
	OutcomePermitted Outcome = "PERMITIDO"
	OutcomeDenied    Outcome = "DENEGADO"
)

// Reserved event types. The event type field is open: anything else is
// kept as free text, but these four drive the decision logic.
const (
	EventTypeValidAccess    = "VALID_ACCESS"
	EventTypeRejectedAccess = "REJECTED_ACCESS"
	EventTypeManualOpen     = "MANUAL_OPEN"
	EventTypeManualClose    = "MANUAL_CLOSE"
)

// ManualEventType reports whether the event type is a manual actuation,
// which is trusted unconditionally and bypasses status checks.
func ManualEventType(eventType string) bool {
	return eventType == EventTypeManualOpen || eventType == EventTypeManualClose
}

// Event is one recorded access attempt. Rows are append-only: no code
// path updates or deletes them once written.
type Event struct {
	ID         int64     `gorm:"primaryKey;column:id_evento" json:"id"`
	SensorID   int64     `gorm:"column:id_sensor" json:"sensor_id"`
	UserID     *int64    `gorm:"column:id_usuario" json:"user_id,omitempty"`
	EventType  string    `gorm:"column:tipo_evento" json:"event_type"`
	OccurredAt time.Time `gorm:"column:fecha_evento" json:"occurred_at"`
	Outcome    Outcome   `gorm:"column:resultado" json:"outcome"`
}

func (Event) TableName() string {
	return "eventos_acceso"
}

// HistoryEntry is an event joined with its sensor code and, when a user
// was involved, the user's name.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	SensorCode string    `json:"sensor_code"`
	UserID     *int64    `json:"user_id,omitempty"`
	UserName   *string   `json:"user_name,omitempty"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Outcome    Outcome   `json:"outcome"`
}

type RepositoryAPI interface {
	Insert(e *Event) error
	HistoryByDepartment(departmentID int64, limit int) ([]*HistoryEntry, error)
}

// DecideAccessDTO is one physical access attempt as submitted by a
// device or gateway.
type DecideAccessDTO struct {
	SensorCode string  `json:"sensor_code"`
	UserID     *int64  `json:"user_id,omitempty"`
	EventType  *string `json:"event_type,omitempty"`
}

func (d *DecideAccessDTO) Validate() error {
	d.SensorCode = strings.TrimSpace(d.SensorCode)
	if d.SensorCode == "" {
		return auth.ValidationError{Msg: "sensor_code is required"}
	}
	return nil
}

// Decision is what the caller reports back to the device.
type Decision struct {
	EventID   int64   `json:"event_id"`
	Outcome   Outcome `json:"outcome"`
	EventType string  `json:"event_type"`
}
