package user

import (
	"log/slog"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
)

type ServiceAPI interface {
	ListUsers() ([]*User, error)
	GetUser(id int64) (*User, error)
	CreateUser(actor *auth.User, dto CreateUserDTO) (*User, error)
	UpdateUser(actor *auth.User, id int64, dto UpdateUserDTO) (*User, error)
	DeleteUser(actor *auth.User, id int64) error
	UpdateStatus(actor *auth.User, id int64, status auth.UserStatus) (*User, error)
	AssignRole(actor *auth.User, id int64, dto AssignRoleDTO) (*User, error)
}

type Service struct {
	repo       RepositoryAPI
	policy     *auth.Policy
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		policy:     policy,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) ListUsers() ([]*User, error) {
	return s.repo.List()
}

func (s *Service) GetUser(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) CreateUser(actor *auth.User, dto CreateUserDTO) (*User, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAccessDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         dto.Name,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		DepartmentID: dto.DepartmentID,
		Status:       auth.UserStatusActive,
		Role:         auth.RoleOperator,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "created_by", actor.ID)
	return u, nil
}

func (s *Service) UpdateUser(actor *auth.User, id int64, dto UpdateUserDTO) (*User, error) {
	if !s.policy.CanActOnUser(actor, id) {
		return nil, internal.ErrAccessDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil && *dto.Email != u.Email {
		existing, err := s.repo.GetByEmail(*dto.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, internal.ErrDuplicateEmail
		}
		u.Email = *dto.Email
	}
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.DepartmentID != nil {
		u.DepartmentID = dto.DepartmentID
	}
	if dto.Notes != nil {
		u.Notes = dto.Notes
	}

	if err := s.repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(actor *auth.User, id int64) error {
	if !actor.IsAdmin() {
		return internal.ErrAccessDenied
	}
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "deleted_by", actor.ID)
	return s.repo.Delete(id)
}

// UpdateStatus is department scoped: only an admin of the target's
// department may change the status. Targets without a department have
// no owning admin and cannot be transitioned here.
func (s *Service) UpdateStatus(actor *auth.User, id int64, status auth.UserStatus) (*User, error) {
	if !status.Valid() {
		return nil, auth.ValidationError{Msg: "status must be one of ACTIVO, INACTIVO, BLOQUEADO"}
	}

	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if u.DepartmentID == nil || !s.policy.CanManageDepartment(actor, *u.DepartmentID) {
		return nil, internal.ErrNotDepartmentAdmin
	}

	if err := s.repo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	u.Status = status

	s.logger.Info("user status changed", "user_id", id, "status", status, "changed_by", actor.ID)
	return u, nil
}

func (s *Service) AssignRole(actor *auth.User, id int64, dto AssignRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	departmentID := dto.DepartmentID
	if departmentID == nil {
		departmentID = u.DepartmentID
	}
	if err := s.policy.AuthorizeRoleAssignment(actor, id, departmentID, dto.Role, adminCounterFunc(s.repo.CountDepartmentAdmins)); err != nil {
		return nil, err
	}

	// The repository re-checks the single-admin constraint inside its
	// transaction; the policy check above only fails fast.
	if err := s.repo.AssignRole(id, dto.Role, departmentID); err != nil {
		return nil, err
	}

	u.Role = dto.Role
	u.DepartmentID = departmentID
	s.logger.Info("role assigned", "user_id", id, "role", dto.Role, "assigned_by", actor.ID)
	return u, nil
}

type adminCounterFunc func(departmentID int64, excludeUserID int64) (int64, error)

func (f adminCounterFunc) CountDepartmentAdmins(departmentID int64, excludeUserID int64) (int64, error) {
	return f(departmentID, excludeUserID)
}
