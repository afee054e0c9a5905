package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rfsolutions/access-management/internal/sensor"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(id int64) (*sensor.Sensor, error) {
	var s sensor.Sensor
	err := r.db.First(&s, "id_sensor = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetByCode(code string) (*sensor.Sensor, error) {
	var s sensor.Sensor
	err := r.db.First(&s, "codigo_sensor = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListByDepartment(departmentID int64) ([]*sensor.Sensor, error) {
	var sensors []*sensor.Sensor
	err := r.db.
		Where("id_departamento = ?", departmentID).
		Order("id_sensor").
		Find(&sensors).Error
	if err != nil {
		return nil, err
	}
	return sensors, nil
}

func (r *Repository) Create(s *sensor.Sensor) error {
	return r.db.Create(s).Error
}

func (r *Repository) UpdateStatus(id int64, status sensor.Status, retiredAt *time.Time) error {
	return r.db.Model(&sensor.Sensor{}).
		Where("id_sensor = ?", id).
		Updates(map[string]interface{}{
			"estado":     status,
			"fecha_baja": retiredAt,
		}).Error
}
