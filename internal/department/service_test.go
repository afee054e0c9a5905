package department

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
)

func TestDepartment(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Department Module Suite")
}

type mockDepartmentRepository struct {
	departments map[int64]*Department
	nextID      int64
}

func newMockDepartmentRepository() *mockDepartmentRepository {
	return &mockDepartmentRepository{
		departments: map[int64]*Department{
			1: {ID: 1, Number: "101", Tower: "A", CreatedAt: time.Now()},
		},
		nextID: 1,
	}
}

func (m *mockDepartmentRepository) List() ([]*Department, error) {
	out := make([]*Department, 0, len(m.departments))
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDepartmentRepository) GetByID(id int64) (*Department, error) {
	return m.departments[id], nil
}

func (m *mockDepartmentRepository) Create(d *Department) error {
	m.nextID++
	d.ID = m.nextID
	m.departments[d.ID] = d
	return nil
}

func (m *mockDepartmentRepository) Update(d *Department) error {
	m.departments[d.ID] = d
	return nil
}

func (m *mockDepartmentRepository) Delete(id int64) error {
	delete(m.departments, id)
	return nil
}

var _ = ginkgo.Describe("DepartmentService", func() {
	var (
		service  *Service
		mockRepo *mockDepartmentRepository
		admin    *auth.User
		operator *auth.User
	)

	ginkgo.BeforeEach(func() {
		deptA := int64(1)
		mockRepo = newMockDepartmentRepository()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(mockRepo, auth.NewPolicy(), lg)
		admin = &auth.User{ID: 1, Role: auth.RoleAdmin, Status: auth.UserStatusActive, DepartmentID: &deptA}
		operator = &auth.User{ID: 2, Role: auth.RoleOperator, Status: auth.UserStatusActive, DepartmentID: &deptA}
	})

	ginkgo.Describe("CreateDepartment", func() {
		ginkgo.It("lets an admin create a department", func() {
			d, err := service.CreateDepartment(admin, CreateDepartmentDTO{Number: "202", Tower: "B"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(d.Number).To(gomega.Equal("202"))
		})

		ginkgo.It("denies a non-admin", func() {
			_, err := service.CreateDepartment(operator, CreateDepartmentDTO{Number: "202", Tower: "B"})

			gomega.Expect(err).To(gomega.Equal(internal.ErrAccessDenied))
		})

		ginkgo.It("rejects missing fields", func() {
			_, err := service.CreateDepartment(admin, CreateDepartmentDTO{Number: "", Tower: "B"})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("UpdateDepartment", func() {
		ginkgo.It("lets the department's own admin update it", func() {
			tower := "C"
			d, err := service.UpdateDepartment(admin, 1, UpdateDepartmentDTO{Tower: &tower})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(d.Tower).To(gomega.Equal("C"))
		})

		ginkgo.It("denies an admin of another department", func() {
			deptB := int64(2)
			stranger := &auth.User{ID: 9, Role: auth.RoleAdmin, Status: auth.UserStatusActive, DepartmentID: &deptB}
			tower := "C"

			_, err := service.UpdateDepartment(stranger, 1, UpdateDepartmentDTO{Tower: &tower})

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})
	})

	ginkgo.Describe("DeleteDepartment", func() {
		ginkgo.It("lets the department's own admin delete it", func() {
			err := service.DeleteDepartment(admin, 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.departments).ToNot(gomega.HaveKey(int64(1)))
		})

		ginkgo.It("denies an operator", func() {
			err := service.DeleteDepartment(operator, 1)

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})
	})

	ginkgo.Describe("GetDepartment", func() {
		ginkgo.It("reports a missing department", func() {
			_, err := service.GetDepartment(999)

			gomega.Expect(err).To(gomega.Equal(internal.ErrDepartmentNotFound))
		})
	})
})
