package user

import (
	"time"

	"github.com/rfsolutions/access-management/internal/auth"
)

// User is the persisted account record. Column names match the deployed
// database schema; status and role values are the auth package's closed sets.
type User struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"column:name" json:"name"`
	LastName     string          `gorm:"column:last_name" json:"last_name"`
	Email        string          `gorm:"column:email" json:"email"`
	PasswordHash string          `gorm:"column:password_hash" json:"-"`
	DepartmentID *int64          `gorm:"column:id_departamento" json:"department_id,omitempty"`
	Status       auth.UserStatus `gorm:"column:estado" json:"status"`
	Role         auth.Role       `gorm:"column:role" json:"role"`
	Notes        *string         `gorm:"column:otros_datos" json:"notes,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Actor converts the record into the auth actor shape used by the policy.
func (u *User) Actor() *auth.User {
	return &auth.User{
		ID:           u.ID,
		Name:         u.Name,
		LastName:     u.LastName,
		Email:        u.Email,
		Status:       u.Status,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

type RepositoryAPI interface {
	List() ([]*User, error)
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(u *User) error
	Update(u *User) error
	Delete(id int64) error
	UpdateStatus(id int64, status auth.UserStatus) error
	CountDepartmentAdmins(departmentID int64, excludeUserID int64) (int64, error)
	AssignRole(targetID int64, role auth.Role, departmentID *int64) error
}
