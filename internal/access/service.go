package access

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/core/events"
	"github.com/rfsolutions/access-management/internal/sensor"
	"github.com/rfsolutions/access-management/internal/user"
)

// SensorLookup is the slice of the sensor store the decision engine needs.
type SensorLookup interface {
	GetByCode(code string) (*sensor.Sensor, error)
}

// UserLookup resolves the acting user for a decision.
type UserLookup interface {
	GetByID(id int64) (*user.User, error)
}

type ServiceAPI interface {
	DecideAccess(dto DecideAccessDTO, now time.Time) (*Decision, error)
	DepartmentHistory(departmentID int64, limit int) ([]*HistoryEntry, error)
	Telemetry() *TelemetryReading
}

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 500
)

type Service struct {
	repo     RepositoryAPI
	sensors  SensorLookup
	users    UserLookup
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, sensors SensorLookup, users UserLookup, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sensors:  sensors,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
	}
}

// DecideAccess computes the verdict for one access attempt and appends
// the event. Every call writes a new event; replays are new attempts.
func (s *Service) DecideAccess(dto DecideAccessDTO, now time.Time) (*Decision, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now()
	}

	sn, err := s.sensors.GetByCode(dto.SensorCode)
	if err != nil {
		return nil, err
	}
	if sn == nil {
		return nil, internal.ErrSensorNotFound
	}

	actingUser, err := s.resolveUser(dto.UserID, sn.HolderID)
	if err != nil {
		return nil, err
	}

	eventType := EventTypeValidAccess
	if dto.EventType != nil && *dto.EventType != "" {
		eventType = *dto.EventType
	}

	outcome := s.decide(sn, actingUser, eventType)

	event := &Event{
		SensorID:   sn.ID,
		EventType:  eventType,
		OccurredAt: now,
		Outcome:    outcome,
	}
	if actingUser != nil {
		event.UserID = &actingUser.ID
	}
	if err := s.repo.Insert(event); err != nil {
		s.logger.Error("failed to record access event",
			"sensor_code", dto.SensorCode,
			"error", err)
		return nil, internal.NewInternalError("failed to record access event", err)
	}

	s.logger.Info("access decided",
		"sensor_code", sn.Code,
		"event_type", eventType,
		"outcome", outcome,
		"event_id", event.ID)

	if err := s.eventBus.Publish(context.Background(),
		events.NewAccessDecidedEvent(event.ID, sn.ID, sn.Code, event.UserID, eventType, string(outcome))); err != nil {
		s.logger.Error("failed to publish access decided event", "event_id", event.ID, "error", err)
	}

	return &Decision{
		EventID:   event.ID,
		Outcome:   outcome,
		EventType: eventType,
	}, nil
}

// resolveUser prefers the explicitly supplied id, falls back to the
// sensor's assigned holder, otherwise no user. An explicit id that does
// not resolve is treated as no user.
func (s *Service) resolveUser(explicitID, holderID *int64) (*user.User, error) {
	id := explicitID
	if id == nil {
		id = holderID
	}
	if id == nil {
		return nil, nil
	}
	return s.users.GetByID(*id)
}

func (s *Service) decide(sn *sensor.Sensor, u *user.User, eventType string) Outcome {
	if ManualEventType(eventType) {
		return OutcomePermitted
	}
	if sn.Status != sensor.StatusActive {
		return OutcomeDenied
	}
	if u != nil && !u.Actor().IsActive() {
		return OutcomeDenied
	}
	return OutcomePermitted
}

func (s *Service) DepartmentHistory(departmentID int64, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.HistoryByDepartment(departmentID, limit)
}

// TelemetryReading is a simulated ambient sample exposed alongside
// access decisions for gateway dashboards.
type TelemetryReading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	ReadAt      time.Time `json:"read_at"`
}

func (s *Service) Telemetry() *TelemetryReading {
	return &TelemetryReading{
		Temperature: 18 + rand.Float64()*12,
		Humidity:    30 + rand.Float64()*50,
		ReadAt:      time.Now(),
	}
}
