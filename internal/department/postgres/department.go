package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rfsolutions/access-management/internal/department"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]*department.Department, error) {
	var departments []*department.Department
	if err := r.db.Order("id_departamento").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *Repository) GetByID(id int64) (*department.Department, error) {
	var d department.Department
	err := r.db.First(&d, "id_departamento = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(d *department.Department) error {
	d.CreatedAt = time.Now()
	return r.db.Create(d).Error
}

func (r *Repository) Update(d *department.Department) error {
	return r.db.Save(d).Error
}

func (r *Repository) Delete(id int64) error {
	return r.db.Delete(&department.Department{}, "id_departamento = ?", id).Error
}
