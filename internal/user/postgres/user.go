package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]*user.User, error) {
	var users []*user.User
	if err := r.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.First(&u, "lower(email) = lower(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	return r.db.Create(u).Error
}

func (r *Repository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(u).Error
}

func (r *Repository) Delete(id int64) error {
	return r.db.Delete(&user.User{}, "id = ?", id).Error
}

func (r *Repository) UpdateStatus(id int64, status auth.UserStatus) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *Repository) CountDepartmentAdmins(departmentID int64, excludeUserID int64) (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).
		Where("id_departamento = ? AND role = ? AND id <> ?", departmentID, auth.RoleAdmin, excludeUserID).
		Count(&count).Error
	return count, err
}

// AssignRole updates role and department atomically. The single-admin
// invariant is re-checked inside the transaction so two concurrent
// promotions cannot both pass the service-level precheck.
func (r *Repository) AssignRole(targetID int64, role auth.Role, departmentID *int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if role == auth.RoleAdmin && departmentID != nil {
			var count int64
			if err := tx.Model(&user.User{}).
				Where("id_departamento = ? AND role = ? AND id <> ?", *departmentID, auth.RoleAdmin, targetID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return internal.ErrDuplicateAdmin
			}
		}

		res := tx.Model(&user.User{}).
			Where("id = ?", targetID).
			Updates(map[string]interface{}{
				"role":            role,
				"id_departamento": departmentID,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}
