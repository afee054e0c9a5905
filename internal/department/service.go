package department

import (
	"log/slog"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
)

type ServiceAPI interface {
	ListDepartments() ([]*Department, error)
	GetDepartment(id int64) (*Department, error)
	CreateDepartment(actor *auth.User, dto CreateDepartmentDTO) (*Department, error)
	UpdateDepartment(actor *auth.User, id int64, dto UpdateDepartmentDTO) (*Department, error)
	DeleteDepartment(actor *auth.User, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	policy *auth.Policy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

func (s *Service) ListDepartments() ([]*Department, error) {
	return s.repo.List()
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return d, nil
}

func (s *Service) CreateDepartment(actor *auth.User, dto CreateDepartmentDTO) (*Department, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAccessDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d := &Department{
		Number: dto.Number,
		Tower:  dto.Tower,
		Notes:  dto.Notes,
	}
	if err := s.repo.Create(d); err != nil {
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "created_by", actor.ID)
	return d, nil
}

func (s *Service) UpdateDepartment(actor *auth.User, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if !s.policy.CanManageDepartment(actor, id) {
		return nil, internal.ErrNotDepartmentAdmin
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.GetDepartment(id)
	if err != nil {
		return nil, err
	}

	if dto.Number != nil {
		d.Number = *dto.Number
	}
	if dto.Tower != nil {
		d.Tower = *dto.Tower
	}
	if dto.Notes != nil {
		d.Notes = dto.Notes
	}

	if err := s.repo.Update(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDepartment(actor *auth.User, id int64) error {
	if !s.policy.CanManageDepartment(actor, id) {
		return internal.ErrNotDepartmentAdmin
	}
	if _, err := s.GetDepartment(id); err != nil {
		return err
	}

	s.logger.Info("department deleted", "department_id", id, "deleted_by", actor.ID)
	return s.repo.Delete(id)
}
