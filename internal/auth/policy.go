package auth

import (
	"github.com/rfsolutions/access-management/internal"
)

// AdminCounter reports how many ADMIN users a department has, excluding one
// user id (the target of an update, so its own prior record does not count
// against it). Implemented by the user repository, including inside the
// role-assignment transaction.
type AdminCounter interface {
	CountDepartmentAdmins(departmentID int64, excludeUserID int64) (int64, error)
}

// Policy decides whether an actor may perform a protected mutation.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// CanManageDepartment is true iff the actor is an ADMIN of exactly that
// department. Gates sensor registration, sensor status changes, department
// event history and department-scoped user status changes.
func (p *Policy) CanManageDepartment(actor *User, departmentID int64) bool {
	if actor == nil || !actor.IsAdmin() {
		return false
	}
	return actor.DepartmentID != nil && *actor.DepartmentID == departmentID
}

// CanActOnUser is true for self-service, or for any ADMIN regardless of
// department. The department-scoped rule is deliberately not applied here:
// identity-level operations (profile edits, deletion) follow the broader
// admin-or-self rule, while status/role mutations go through
// CanManageDepartment.
func (p *Policy) CanActOnUser(actor *User, targetUserID int64) bool {
	if actor == nil {
		return false
	}
	if actor.ID == targetUserID {
		return true
	}
	return actor.IsAdmin()
}

// CanViewDepartment is true for any member of the department, admin or not.
// Used for event history and sensor listings.
func (p *Policy) CanViewDepartment(actor *User, departmentID int64) bool {
	if actor == nil {
		return false
	}
	return actor.DepartmentID != nil && *actor.DepartmentID == departmentID
}

// AuthorizeRoleAssignment checks whether the actor may set the target user's
// role within departmentID. Promoting to ADMIN requires that the department
// has no other ADMIN; admins counts exclude the target itself so re-applying
// an existing assignment stays allowed.
//
// Returns nil when allowed, ErrAccessDenied when the actor lacks the role,
// ErrDuplicateAdmin when the department already has a different ADMIN.
func (p *Policy) AuthorizeRoleAssignment(actor *User, targetUserID int64, departmentID *int64, role Role, admins AdminCounter) error {
	if actor == nil || !actor.IsAdmin() {
		return internal.ErrAccessDenied
	}
	if !role.Valid() {
		return internal.NewValidationError("invalid role", internal.ErrCodeInvalidRole)
	}
	if role == RoleAdmin && departmentID != nil {
		count, err := admins.CountDepartmentAdmins(*departmentID, targetUserID)
		if err != nil {
			return internal.NewInternalError("failed to check department admins", err)
		}
		if count > 0 {
			return internal.ErrDuplicateAdmin
		}
	}
	return nil
}
