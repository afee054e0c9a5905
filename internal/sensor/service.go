package sensor

import (
	"context"
	"log/slog"
	"time"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/core/events"
)

type ServiceAPI interface {
	RegisterSensor(actor *auth.User, dto RegisterSensorDTO) (*Sensor, error)
	UpdateStatus(actor *auth.User, id int64, status Status) (*Sensor, error)
	ListByDepartment(departmentID int64) ([]*Sensor, error)
	GetSensor(id int64) (*Sensor, error)
}

type Service struct {
	repo     RepositoryAPI
	policy   *auth.Policy
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		policy:   policy,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RegisterSensor creates a sensor in the actor's own department. The
// actor must be that department's admin; the department is never taken
// from the request.
func (s *Service) RegisterSensor(actor *auth.User, dto RegisterSensorDTO) (*Sensor, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if actor.DepartmentID == nil || !s.policy.CanManageDepartment(actor, *actor.DepartmentID) {
		return nil, internal.ErrNotDepartmentAdmin
	}

	existing, err := s.repo.GetByCode(dto.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrDuplicateSensorCode
	}

	sensor := &Sensor{
		Code:         dto.Code,
		Type:         dto.Type,
		Status:       StatusActive,
		DepartmentID: actor.DepartmentID,
		HolderID:     dto.HolderID,
		RegisteredAt: time.Now(),
	}
	if err := s.repo.Create(sensor); err != nil {
		return nil, err
	}

	s.logger.Info("sensor registered",
		"sensor_id", sensor.ID,
		"code", sensor.Code,
		"department_id", *sensor.DepartmentID,
		"registered_by", actor.ID)
	return sensor, nil
}

func (s *Service) UpdateStatus(actor *auth.User, id int64, status Status) (*Sensor, error) {
	if !status.Valid() {
		return nil, auth.ValidationError{Msg: "status must be one of ACTIVO, INACTIVO, PERDIDO, BLOQUEADO"}
	}

	sensor, err := s.GetSensor(id)
	if err != nil {
		return nil, err
	}
	if sensor.DepartmentID == nil || !s.policy.CanManageDepartment(actor, *sensor.DepartmentID) {
		return nil, internal.ErrNotDepartmentAdmin
	}

	var retiredAt *time.Time
	if status.Retired() {
		now := time.Now()
		retiredAt = &now
	}
	if err := s.repo.UpdateStatus(id, status, retiredAt); err != nil {
		return nil, err
	}
	sensor.Status = status
	sensor.RetiredAt = retiredAt

	s.logger.Info("sensor status changed",
		"sensor_id", id,
		"status", status,
		"changed_by", actor.ID)

	if status.Retired() {
		if err := s.eventBus.Publish(context.Background(),
			events.NewSensorRetiredEvent(sensor.ID, sensor.Code, string(status))); err != nil {
			s.logger.Error("failed to publish sensor retired event", "sensor_id", id, "error", err)
		}
	}
	return sensor, nil
}

func (s *Service) ListByDepartment(departmentID int64) ([]*Sensor, error) {
	return s.repo.ListByDepartment(departmentID)
}

func (s *Service) GetSensor(id int64) (*Sensor, error) {
	sensor, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sensor == nil {
		return nil, internal.ErrSensorNotFound
	}
	return sensor, nil
}
