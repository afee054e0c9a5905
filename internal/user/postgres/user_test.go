package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
	"github.com/rfsolutions/access-management/internal/user"
	userPostgres "github.com/rfsolutions/access-management/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

// SQLite-compatible user model for schema creation in tests
type sqliteUser struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	DepartmentID *int64    `gorm:"column:id_departamento"`
	Status       string    `gorm:"column:estado;default:ACTIVO"`
	Role         string    `gorm:"column:role;default:OPERADOR"`
	Notes        *string   `gorm:"column:otros_datos"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (sqliteUser) TableName() string {
	return "users"
}

var _ = Describe("User Repository", func() {
	var (
		db   *gorm.DB
		repo user.RepositoryAPI
	)

	seed := func(name, email string, dept *int64, role auth.Role) *user.User {
		u := &user.User{
			Name:         name,
			LastName:     "Test",
			Email:        email,
			PasswordHash: "x",
			DepartmentID: dept,
			Status:       auth.UserStatusActive,
			Role:         role,
		}
		Expect(repo.Create(u)).To(Succeed())
		return u
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&sqliteUser{})).To(Succeed())

		repo = userPostgres.NewRepository(db)
	})

	Describe("GetByEmail", func() {
		It("should match case-insensitively", func() {
			seed("Ana", "ana@example.com", nil, auth.RoleOperator)

			found, err := repo.GetByEmail("ANA@Example.COM")

			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.Name).To(Equal("Ana"))
		})

		It("should return nil for an unknown email", func() {
			found, err := repo.GetByEmail("nobody@example.com")

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("CountDepartmentAdmins", func() {
		It("should count admins excluding the given user", func() {
			deptA := int64(1)
			admin := seed("Ana", "ana@example.com", &deptA, auth.RoleAdmin)
			seed("Beto", "beto@example.com", &deptA, auth.RoleOperator)

			count, err := repo.CountDepartmentAdmins(deptA, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			count, err = repo.CountDepartmentAdmins(deptA, admin.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Describe("AssignRole", func() {
		It("should promote when the department has no other admin", func() {
			deptA := int64(1)
			target := seed("Beto", "beto@example.com", &deptA, auth.RoleOperator)

			Expect(repo.AssignRole(target.ID, auth.RoleAdmin, &deptA)).To(Succeed())

			reloaded, err := repo.GetByID(target.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Role).To(Equal(auth.RoleAdmin))
		})

		It("should refuse a second admin in the same department", func() {
			deptA := int64(1)
			seed("Ana", "ana@example.com", &deptA, auth.RoleAdmin)
			target := seed("Beto", "beto@example.com", &deptA, auth.RoleOperator)

			err := repo.AssignRole(target.ID, auth.RoleAdmin, &deptA)

			Expect(err).To(Equal(internal.ErrDuplicateAdmin))

			reloaded, loadErr := repo.GetByID(target.ID)
			Expect(loadErr).NotTo(HaveOccurred())
			Expect(reloaded.Role).To(Equal(auth.RoleOperator))
		})

		It("should allow re-applying the current admin's own assignment", func() {
			deptA := int64(1)
			admin := seed("Ana", "ana@example.com", &deptA, auth.RoleAdmin)

			Expect(repo.AssignRole(admin.ID, auth.RoleAdmin, &deptA)).To(Succeed())
		})

		It("should report a missing target", func() {
			deptA := int64(1)

			err := repo.AssignRole(999, auth.RoleAdmin, &deptA)

			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("UpdateStatus", func() {
		It("should persist the new status", func() {
			u := seed("Ana", "ana@example.com", nil, auth.RoleOperator)

			Expect(repo.UpdateStatus(u.ID, auth.UserStatusBlocked)).To(Succeed())

			reloaded, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Status).To(Equal(auth.UserStatusBlocked))
		})
	})
})
