package postgres

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rfsolutions/access-management/internal"
	"github.com/rfsolutions/access-management/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const userColumns = `id, name, last_name, email, estado, role, id_departamento`

func (r *Repository) GetCredentialsByEmail(email string) (string, *auth.User, error) {
	var (
		user         auth.User
		passwordHash string
		departmentID sql.NullInt64
	)

	query := `SELECT id, name, last_name, email, password_hash, estado, role, id_departamento
	          FROM users WHERE lower(email) = lower(?)`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&user.ID, &user.Name, &user.LastName, &user.Email, &passwordHash,
		&user.Status, &user.Role, &departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, internal.ErrUserNotFound
		}
		return "", nil, err
	}

	if departmentID.Valid {
		user.DepartmentID = &departmentID.Int64
	}
	return passwordHash, &user, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var (
		user         auth.User
		departmentID sql.NullInt64
	)

	row := r.db.Raw(`SELECT `+userColumns+` FROM users WHERE id = ?`, userID).Row()
	if err := row.Scan(&user.ID, &user.Name, &user.LastName, &user.Email,
		&user.Status, &user.Role, &departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	if departmentID.Valid {
		user.DepartmentID = &departmentID.Int64
	}
	return &user, nil
}

func (r *Repository) CreateUser(name, lastName, email, passwordHash string) (*auth.User, error) {
	now := time.Now()
	err := r.db.Exec(`INSERT INTO users (name, last_name, email, password_hash, estado, role, created_at, updated_at)
	                  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, lastName, email, passwordHash, auth.UserStatusActive, auth.RoleOperator, now, now).Error
	if err != nil {
		return nil, err
	}

	_, user, err := r.GetCredentialsByEmail(email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Exec(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now(), userID).Error
}

func (r *Repository) CreateResetCode(userID int64, code string, issuedAt time.Time) error {
	rc := auth.PasswordResetCode{
		UserID:    userID,
		Code:      code,
		CreatedAt: issuedAt,
	}
	return r.db.Create(&rc).Error
}

func (r *Repository) GetLatestResetCode(userID int64) (*auth.PasswordResetCode, error) {
	var rc auth.PasswordResetCode
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&rc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}

func (r *Repository) MarkResetCodeUsed(codeID int64, usedAt time.Time) error {
	return r.db.Model(&auth.PasswordResetCode{}).
		Where("id = ?", codeID).
		Update("used_at", usedAt).Error
}
