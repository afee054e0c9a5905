package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/rfsolutions/access-management/internal"
)

type mockAdminCounter struct {
	count int64
	err   error
}

func (m *mockAdminCounter) CountDepartmentAdmins(departmentID int64, excludeUserID int64) (int64, error) {
	return m.count, m.err
}

var _ = ginkgo.Describe("Policy", func() {
	var (
		policy *Policy
		deptA  int64 = 1
		deptB  int64 = 2
	)

	adminOf := func(dept int64) *User {
		return &User{ID: 100, Role: RoleAdmin, Status: UserStatusActive, DepartmentID: &dept}
	}
	operatorOf := func(dept int64) *User {
		return &User{ID: 200, Role: RoleOperator, Status: UserStatusActive, DepartmentID: &dept}
	}

	ginkgo.BeforeEach(func() {
		policy = NewPolicy()
	})

	ginkgo.Describe("CanManageDepartment", func() {
		ginkgo.It("allows an admin of the same department", func() {
			gomega.Expect(policy.CanManageDepartment(adminOf(deptA), deptA)).To(gomega.BeTrue())
		})

		ginkgo.It("denies an admin of another department", func() {
			gomega.Expect(policy.CanManageDepartment(adminOf(deptB), deptA)).To(gomega.BeFalse())
		})

		ginkgo.It("denies an operator even in its own department", func() {
			gomega.Expect(policy.CanManageDepartment(operatorOf(deptA), deptA)).To(gomega.BeFalse())
		})

		ginkgo.It("denies an admin with no department", func() {
			admin := &User{ID: 1, Role: RoleAdmin, Status: UserStatusActive}
			gomega.Expect(policy.CanManageDepartment(admin, deptA)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("CanActOnUser", func() {
		ginkgo.It("allows self-service", func() {
			op := operatorOf(deptA)
			gomega.Expect(policy.CanActOnUser(op, op.ID)).To(gomega.BeTrue())
		})

		ginkgo.It("allows an admin of any department", func() {
			gomega.Expect(policy.CanActOnUser(adminOf(deptB), 999)).To(gomega.BeTrue())
		})

		ginkgo.It("denies an operator acting on someone else", func() {
			gomega.Expect(policy.CanActOnUser(operatorOf(deptA), 999)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("AuthorizeRoleAssignment", func() {
		ginkgo.It("allows an admin to promote when the department has no other admin", func() {
			err := policy.AuthorizeRoleAssignment(adminOf(deptA), 5, &deptA, RoleAdmin, &mockAdminCounter{count: 0})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("returns a conflict when the department already has another admin", func() {
			err := policy.AuthorizeRoleAssignment(adminOf(deptA), 5, &deptA, RoleAdmin, &mockAdminCounter{count: 1})
			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateAdmin))
		})

		ginkgo.It("allows demotion to OPERADOR regardless of existing admins", func() {
			err := policy.AuthorizeRoleAssignment(adminOf(deptA), 5, &deptA, RoleOperator, &mockAdminCounter{count: 1})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("denies a non-admin actor", func() {
			err := policy.AuthorizeRoleAssignment(operatorOf(deptA), 5, &deptA, RoleAdmin, &mockAdminCounter{count: 0})
			gomega.Expect(err).To(gomega.Equal(internal.ErrAccessDenied))
		})

		ginkgo.It("rejects a role outside the closed set", func() {
			err := policy.AuthorizeRoleAssignment(adminOf(deptA), 5, &deptA, Role("SUPERUSER"), &mockAdminCounter{count: 0})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
