package department

import (
	"strings"
	"time"

	"github.com/rfsolutions/access-management/internal/auth"
)

// Department is a unit of the building. Sensors and users hang off it.
type Department struct {
	ID        int64     `gorm:"primaryKey;column:id_departamento" json:"id"`
	Number    string    `gorm:"column:numero" json:"number"`
	Tower     string    `gorm:"column:torre" json:"tower"`
	Notes     *string   `gorm:"column:otros_datos" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Department) TableName() string {
	return "departamentos"
}

type RepositoryAPI interface {
	List() ([]*Department, error)
	GetByID(id int64) (*Department, error)
	Create(d *Department) error
	Update(d *Department) error
	Delete(id int64) error
}

type CreateDepartmentDTO struct {
	Number string  `json:"number"`
	Tower  string  `json:"tower"`
	Notes  *string `json:"notes,omitempty"`
}

func (d *CreateDepartmentDTO) Validate() error {
	d.Number = strings.TrimSpace(d.Number)
	d.Tower = strings.TrimSpace(d.Tower)

	if d.Number == "" {
		return auth.ValidationError{Msg: "number is required"}
	}
	if d.Tower == "" {
		return auth.ValidationError{Msg: "tower is required"}
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Number *string `json:"number,omitempty"`
	Tower  *string `json:"tower,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (d *UpdateDepartmentDTO) Validate() error {
	if d.Number != nil && strings.TrimSpace(*d.Number) == "" {
		return auth.ValidationError{Msg: "number cannot be empty"}
	}
	if d.Tower != nil && strings.TrimSpace(*d.Tower) == "" {
		return auth.ValidationError{Msg: "tower cannot be empty"}
	}
	return nil
}
