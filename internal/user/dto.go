package user

import (
	"strings"

	"github.com/rfsolutions/access-management/internal/auth"
)

type CreateUserDTO struct {
	Name         string `json:"name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

func (d *CreateUserDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = auth.NormalizeEmail(d.Email)

	if d.Name == "" {
		return auth.ValidationError{Msg: "name is required"}
	}
	if d.LastName == "" {
		return auth.ValidationError{Msg: "last_name is required"}
	}
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return auth.ValidationError{Msg: "a valid email is required"}
	}
	return auth.ValidatePasswordStrength(d.Password)
}

type UpdateUserDTO struct {
	Name         *string `json:"name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (d *UpdateUserDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return auth.ValidationError{Msg: "name cannot be empty"}
	}
	if d.LastName != nil && strings.TrimSpace(*d.LastName) == "" {
		return auth.ValidationError{Msg: "last_name cannot be empty"}
	}
	if d.Email != nil {
		normalized := auth.NormalizeEmail(*d.Email)
		if normalized == "" || !strings.Contains(normalized, "@") {
			return auth.ValidationError{Msg: "a valid email is required"}
		}
		d.Email = &normalized
	}
	return nil
}

type UpdateStatusDTO struct {
	Status auth.UserStatus `json:"status"`
}

func (d *UpdateStatusDTO) Validate() error {
	if !d.Status.Valid() {
		return auth.ValidationError{Msg: "status must be one of ACTIVO, INACTIVO, BLOQUEADO"}
	}
	return nil
}

type AssignRoleDTO struct {
	Role         auth.Role `json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
}

func (d *AssignRoleDTO) Validate() error {
	if !d.Role.Valid() {
		return auth.ValidationError{Msg: "role must be ADMIN or OPERADOR"}
	}
	return nil
}
