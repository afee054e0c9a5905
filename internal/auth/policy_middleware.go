package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/rfsolutions/access-management/internal"
)

// RequirePolicy wraps a policy check into chi middleware. The check runs
// against the actor loaded by AuthMiddleware.
func RequirePolicy(policy *Policy, check func(p *Policy, u *User, r *http.Request) error) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := check(policy, u, r); err != nil {
				if appErr, isApp := internal.IsAppError(err); isApp {
					http.Error(w, appErr.Message, appErr.StatusCode)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route on the actor holding the ADMIN role.
func RequireAdmin(policy *Policy) func(next http.Handler) http.Handler {
	return RequirePolicy(policy, func(p *Policy, u *User, r *http.Request) error {
		if !u.IsAdmin() {
			return internal.ErrNotDepartmentAdmin
		}
		return nil
	})
}

// RequireDepartmentMember gates a route on the actor belonging to the
// department named by the URL parameter.
func RequireDepartmentMember(policy *Policy, param string) func(next http.Handler) http.Handler {
	return RequirePolicy(policy, func(p *Policy, u *User, r *http.Request) error {
		deptID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
		if err != nil {
			return internal.NewValidationError("invalid department id", internal.ErrCodeValidationFailed)
		}
		if !p.CanViewDepartment(u, deptID) {
			return internal.ErrAccessDenied
		}
		return nil
	})
}

// RequireDepartmentAdmin gates a route on the actor being ADMIN of the
// department named by the URL parameter.
func RequireDepartmentAdmin(policy *Policy, param string) func(next http.Handler) http.Handler {
	return RequirePolicy(policy, func(p *Policy, u *User, r *http.Request) error {
		deptID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
		if err != nil {
			return internal.NewValidationError("invalid department id", internal.ErrCodeValidationFailed)
		}
		if !p.CanManageDepartment(u, deptID) {
			return internal.ErrNotDepartmentAdmin
		}
		return nil
	})
}

// RequireSensorDepartmentAdmin gates a sensor mutation on the actor being
// ADMIN of the sensor's owning department. The department is looked up from
// the id URL parameter.
func RequireSensorDepartmentAdmin(db *sqlx.DB, policy *Policy) func(next http.Handler) http.Handler {
	return RequirePolicy(policy, func(p *Policy, u *User, r *http.Request) error {
		sensorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			return internal.NewValidationError("invalid sensor id", internal.ErrCodeValidationFailed)
		}

		ctx, cancel := internal.WithTimeout(r.Context(), 0)
		defer cancel()

		var deptID sql.NullInt64
		err = db.GetContext(ctx, &deptID, "SELECT id_departamento FROM sensores WHERE id_sensor=$1", sensorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return internal.ErrSensorNotFound
			}
			return internal.NewInternalError("failed to load sensor", err)
		}

		if !deptID.Valid || !p.CanManageDepartment(u, deptID.Int64) {
			return internal.ErrNotDepartmentAdmin
		}
		return nil
	})
}
