package sensor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/core/events"
)

func TestSensor(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Sensor Module Suite")
}

type mockSensorRepository struct {
	sensors map[int64]*Sensor
	nextID  int64
}

func newMockSensorRepository() *mockSensorRepository {
	dept := int64(1)
	return &mockSensorRepository{
		sensors: map[int64]*Sensor{
			1: {ID: 1, Code: "RFID-0001", Type: "Llavero", Status: StatusActive, DepartmentID: &dept, RegisteredAt: time.Now()},
		},
		nextID: 1,
	}
}

func (m *mockSensorRepository) GetByID(id int64) (*Sensor, error) {
	return m.sensors[id], nil
}

func (m *mockSensorRepository) GetByCode(code string) (*Sensor, error) {
	for _, s := range m.sensors {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSensorRepository) ListByDepartment(departmentID int64) ([]*Sensor, error) {
	var out []*Sensor
	for _, s := range m.sensors {
		if s.DepartmentID != nil && *s.DepartmentID == departmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSensorRepository) Create(s *Sensor) error {
	m.nextID++
	s.ID = m.nextID
	m.sensors[s.ID] = s
	return nil
}

func (m *mockSensorRepository) UpdateStatus(id int64, status Status, retiredAt *time.Time) error {
	m.sensors[id].Status = status
	m.sensors[id].RetiredAt = retiredAt
	return nil
}

var _ = ginkgo.Describe("SensorService", func() {
	var (
		service   *Service
		mockRepo  *mockSensorRepository
		bus       *events.EventBus
		retiredCh chan string
		admin     *auth.User
		operator  *auth.User
	)

	ginkgo.BeforeEach(func() {
		deptA := int64(1)
		mockRepo = newMockSensorRepository()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(lg)
		retiredCh = make(chan string, 1)
		service = NewService(mockRepo, auth.NewPolicy(), bus, lg)

		admin = &auth.User{ID: 1, Role: auth.RoleAdmin, Status: auth.UserStatusActive, DepartmentID: &deptA}
		operator = &auth.User{ID: 2, Role: auth.RoleOperator, Status: auth.UserStatusActive, DepartmentID: &deptA}
	})

	ginkgo.Describe("RegisterSensor", func() {
		ginkgo.It("creates an active sensor in the admin's own department", func() {
			s, err := service.RegisterSensor(admin, RegisterSensorDTO{Code: "RFID-0002", Type: "Tarjeta"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(s.Status).To(gomega.Equal(StatusActive))
			gomega.Expect(s.DepartmentID).To(gomega.HaveValue(gomega.Equal(int64(1))))
			gomega.Expect(s.RegisteredAt).ToNot(gomega.BeZero())
		})

		ginkgo.It("rejects a duplicate code", func() {
			_, err := service.RegisterSensor(admin, RegisterSensorDTO{Code: "RFID-0001", Type: "Tarjeta"})

			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateSensorCode))
		})

		ginkgo.It("denies a non-admin", func() {
			_, err := service.RegisterSensor(operator, RegisterSensorDTO{Code: "RFID-0002", Type: "Tarjeta"})

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})

		ginkgo.It("denies an admin with no department", func() {
			orphan := &auth.User{ID: 9, Role: auth.RoleAdmin, Status: auth.UserStatusActive}

			_, err := service.RegisterSensor(orphan, RegisterSensorDTO{Code: "RFID-0002", Type: "Tarjeta"})

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})

		ginkgo.It("rejects a missing code", func() {
			_, err := service.RegisterSensor(admin, RegisterSensorDTO{Code: " ", Type: "Tarjeta"})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("UpdateStatus", func() {
		ginkgo.It("lets the owning department's admin deactivate a sensor", func() {
			s, err := service.UpdateStatus(admin, 1, StatusInactive)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(s.Status).To(gomega.Equal(StatusInactive))
			gomega.Expect(s.RetiredAt).To(gomega.BeNil())
		})

		ginkgo.It("stamps the retirement date when a sensor is reported lost", func() {
			s, err := service.UpdateStatus(admin, 1, StatusLost)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(s.RetiredAt).ToNot(gomega.BeNil())
		})

		ginkgo.It("announces retirement on the event bus", func() {
			bus.Subscribe(events.EventTypeSensorRetired, func(ctx context.Context, ev events.Event) error {
				if e, ok := ev.(*events.SensorRetiredEvent); ok {
					retiredCh <- e.SensorCode
				}
				return nil
			})

			_, err := service.UpdateStatus(admin, 1, StatusBlocked)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Eventually(retiredCh).Should(gomega.Receive(gomega.Equal("RFID-0001")))
		})

		ginkgo.It("denies an admin of another department", func() {
			deptB := int64(2)
			stranger := &auth.User{ID: 5, Role: auth.RoleAdmin, Status: auth.UserStatusActive, DepartmentID: &deptB}

			_, err := service.UpdateStatus(stranger, 1, StatusBlocked)

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})

		ginkgo.It("denies everyone for a sensor whose department was removed", func() {
			mockRepo.sensors[1].DepartmentID = nil

			_, err := service.UpdateStatus(admin, 1, StatusBlocked)

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})

		ginkgo.It("rejects an unknown status value", func() {
			_, err := service.UpdateStatus(admin, 1, Status("BROKEN"))

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("reports a missing sensor", func() {
			_, err := service.UpdateStatus(admin, 99, StatusInactive)

			gomega.Expect(err).To(gomega.Equal(internal.ErrSensorNotFound))
		})
	})

	ginkgo.Describe("ListByDepartment", func() {
		ginkgo.It("returns only the department's sensors", func() {
			_, err := service.RegisterSensor(admin, RegisterSensorDTO{Code: "RFID-0002", Type: "Tarjeta"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			sensors, err := service.ListByDepartment(1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sensors).To(gomega.HaveLen(2))
		})
	})
})
