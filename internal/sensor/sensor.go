package sensor

import (
	"strings"
	"time"

	"github.com/rfsolutions/access-management/internal/auth"
)

// Status is the sensor lifecycle state. PERDIDO and BLOQUEADO are
// terminal: a sensor in either state never grants access again.
type Status string

const (
	StatusActive   Status = "ACTIVO"
	StatusInactive Status = "INACTIVO"
	StatusLost     Status = "PERDIDO"
	StatusBlocked  Status = "BLOQUEADO"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusLost, StatusBlocked:
		return true
	}
	return false
}

// Retired reports whether the status takes the sensor out of circulation.
func (s Status) Retired() bool {
	return s == StatusLost || s == StatusBlocked
}

// Sensor is a physical credential (RFID fob, keypad, reader) bound to a
// department and optionally held by a user. The department goes nil when
// the department is removed; an orphaned sensor is managed by nobody.
type Sensor struct {
	ID           int64      `gorm:"primaryKey;column:id_sensor" json:"id"`
	Code         string     `gorm:"column:codigo_sensor" json:"code"`
	Type         string     `gorm:"column:tipo" json:"type"`
	Status       Status     `gorm:"column:estado" json:"status"`
	DepartmentID *int64     `gorm:"column:id_departamento" json:"department_id,omitempty"`
	HolderID     *int64     `gorm:"column:id_usuario" json:"holder_id,omitempty"`
	RegisteredAt time.Time  `gorm:"column:fecha_alta" json:"registered_at"`
	RetiredAt    *time.Time `gorm:"column:fecha_baja" json:"retired_at,omitempty"`
}

func (Sensor) TableName() string {
	return "sensores"
}

type RepositoryAPI interface {
	GetByID(id int64) (*Sensor, error)
	GetByCode(code string) (*Sensor, error)
	ListByDepartment(departmentID int64) ([]*Sensor, error)
	Create(s *Sensor) error
	UpdateStatus(id int64, status Status, retiredAt *time.Time) error
}

type RegisterSensorDTO struct {
	Code     string `json:"code"`
	Type     string `json:"type"`
	HolderID *int64 `json:"holder_id,omitempty"`
}

func (d *RegisterSensorDTO) Validate() error {
	d.Code = strings.TrimSpace(d.Code)
	d.Type = strings.TrimSpace(d.Type)

	if d.Code == "" {
		return auth.ValidationError{Msg: "code is required"}
	}
	if d.Type == "" {
		return auth.ValidationError{Msg: "type is required"}
	}
	return nil
}

type UpdateStatusDTO struct {
	Status Status `json:"status"`
}

func (d *UpdateStatusDTO) Validate() error {
	if !d.Status.Valid() {
		return auth.ValidationError{Msg: "status must be one of ACTIVO, INACTIVO, PERDIDO, BLOQUEADO"}
	}
	return nil
}
