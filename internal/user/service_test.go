package user

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

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepository struct {
	users       map[int64]*User
	nextID      int64
	assignCalls int
}

func newMockUserRepository() *mockUserRepository {
	deptA := int64(1)
	deptB := int64(2)
	return &mockUserRepository{
		users: map[int64]*User{
			1: {ID: 1, Name: "Ana", LastName: "Lopez", Email: "ana@example.com", Status: auth.UserStatusActive, Role: auth.RoleAdmin, DepartmentID: &deptA},
			2: {ID: 2, Name: "Beto", LastName: "Diaz", Email: "beto@example.com", Status: auth.UserStatusActive, Role: auth.RoleOperator, DepartmentID: &deptA},
			3: {ID: 3, Name: "Caro", LastName: "Ruiz", Email: "caro@example.com", Status: auth.UserStatusActive, Role: auth.RoleOperator, DepartmentID: &deptB},
		},
		nextID: 3,
	}
}

func (m *mockUserRepository) List() ([]*User, error) {
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) GetByID(id int64) (*User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) GetByEmail(email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) Create(u *User) error {
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Update(u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) UpdateStatus(id int64, status auth.UserStatus) error {
	m.users[id].Status = status
	return nil
}

func (m *mockUserRepository) CountDepartmentAdmins(departmentID int64, excludeUserID int64) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.ID == excludeUserID || u.Role != auth.RoleAdmin {
			continue
		}
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepository) AssignRole(targetID int64, role auth.Role, departmentID *int64) error {
	m.assignCalls++
	if role == auth.RoleAdmin && departmentID != nil {
		count, _ := m.CountDepartmentAdmins(*departmentID, targetID)
		if count > 0 {
			return internal.ErrDuplicateAdmin
		}
	}
	u, ok := m.users[targetID]
	if !ok {
		return internal.ErrUserNotFound
	}
	u.Role = role
	u.DepartmentID = departmentID
	return nil
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		admin    *auth.User
		operator *auth.User
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(mockRepo, auth.NewPolicy(), 4, lg)
		admin = mockRepo.users[1].Actor()
		operator = mockRepo.users[2].Actor()
	})

	ginkgo.Describe("CreateUser", func() {
		ginkgo.It("lets an admin create an operator account", func() {
			u, err := service.CreateUser(admin, CreateUserDTO{
				Name:     "Dani",
				LastName: "Vera",
				Email:    "dani@example.com",
				Password: "Strong1!pass",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Role).To(gomega.Equal(auth.RoleOperator))
			gomega.Expect(u.PasswordHash).ToNot(gomega.Equal("Strong1!pass"))
		})

		ginkgo.It("denies a non-admin", func() {
			_, err := service.CreateUser(operator, CreateUserDTO{
				Name:     "Dani",
				LastName: "Vera",
				Email:    "dani@example.com",
				Password: "Strong1!pass",
			})

			gomega.Expect(err).To(gomega.Equal(internal.ErrAccessDenied))
		})

		ginkgo.It("rejects a duplicate email", func() {
			_, err := service.CreateUser(admin, CreateUserDTO{
				Name:     "Ana",
				LastName: "Lopez",
				Email:    "ana@example.com",
				Password: "Strong1!pass",
			})

			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateEmail))
		})
	})

	ginkgo.Describe("UpdateUser", func() {
		ginkgo.It("lets a user update itself", func() {
			name := "Roberto"
			u, err := service.UpdateUser(operator, 2, UpdateUserDTO{Name: &name})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Name).To(gomega.Equal("Roberto"))
		})

		ginkgo.It("lets an admin update anyone", func() {
			name := "Carolina"
			_, err := service.UpdateUser(admin, 3, UpdateUserDTO{Name: &name})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("denies an operator touching another user", func() {
			name := "X"
			_, err := service.UpdateUser(operator, 3, UpdateUserDTO{Name: &name})

			gomega.Expect(err).To(gomega.Equal(internal.ErrAccessDenied))
		})

		ginkgo.It("rejects taking another user's email", func() {
			email := "ana@example.com"
			_, err := service.UpdateUser(operator, 2, UpdateUserDTO{Email: &email})

			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateEmail))
		})
	})

	ginkgo.Describe("UpdateStatus", func() {
		ginkgo.It("lets the department admin deactivate a member", func() {
			u, err := service.UpdateStatus(admin, 2, auth.UserStatusInactive)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Status).To(gomega.Equal(auth.UserStatusInactive))
		})

		ginkgo.It("denies an admin of another department", func() {
			_, err := service.UpdateStatus(admin, 3, auth.UserStatusBlocked)

			gomega.Expect(err).To(gomega.Equal(internal.ErrNotDepartmentAdmin))
		})

		ginkgo.It("rejects a status outside the closed set", func() {
			_, err := service.UpdateStatus(admin, 2, auth.UserStatus("RETIRED"))

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("AssignRole", func() {
		ginkgo.It("promotes an operator in a department with no admin", func() {
			deptB := int64(2)
			u, err := service.AssignRole(admin, 3, AssignRoleDTO{Role: auth.RoleAdmin, DepartmentID: &deptB})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Role).To(gomega.Equal(auth.RoleAdmin))
		})

		ginkgo.It("returns a conflict when the department already has an admin", func() {
			deptA := int64(1)
			_, err := service.AssignRole(admin, 2, AssignRoleDTO{Role: auth.RoleAdmin, DepartmentID: &deptA})

			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateAdmin))
			gomega.Expect(mockRepo.users[2].Role).To(gomega.Equal(auth.RoleOperator))
		})

		ginkgo.It("does not reach the store when the conflict is caught up front", func() {
			deptA := int64(1)
			_, err := service.AssignRole(admin, 2, AssignRoleDTO{Role: auth.RoleAdmin, DepartmentID: &deptA})

			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateAdmin))
			gomega.Expect(mockRepo.assignCalls).To(gomega.BeZero())
		})

		ginkgo.It("allows re-applying an existing admin assignment", func() {
			deptA := int64(1)
			_, err := service.AssignRole(admin, 1, AssignRoleDTO{Role: auth.RoleAdmin, DepartmentID: &deptA})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("denies a non-admin actor", func() {
			deptB := int64(2)
			_, err := service.AssignRole(operator, 3, AssignRoleDTO{Role: auth.RoleAdmin, DepartmentID: &deptB})

			gomega.Expect(err).To(gomega.Equal(internal.ErrAccessDenied))
		})
	})

	ginkgo.Describe("DeleteUser", func() {
		ginkgo.It("lets an admin delete a user", func() {
			err := service.DeleteUser(admin, 3)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.users).ToNot(gomega.HaveKey(int64(3)))
		})

		ginkgo.It("denies an operator", func() {
			err := service.DeleteUser(operator, 3)

			gomega.Expect(err).To(gomega.Equal(internal.ErrAccessDenied))
		})

		ginkgo.It("reports a missing user", func() {
			err := service.DeleteUser(admin, 999)

			gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
		})
	})
})
