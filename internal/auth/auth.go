package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is the management role of a user within its department.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERADOR"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator
}

// UserStatus is the lifecycle status of a user account. The persisted
// values match what the badge readers and mobile clients already send.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVO"
	UserStatusInactive UserStatus = "INACTIVO"
	UserStatusBlocked  UserStatus = "BLOQUEADO"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusBlocked:
		return true
	}
	return false
}

// User is the authenticated actor attached to the request context.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Status       UserStatus `json:"status"`
	Role         Role       `json:"role"`
	DepartmentID *int64     `json:"department_id,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	Register(dto RegisterDTO) (*User, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserByID(userID int64) (*User, error)
	ForgotPassword(dto ForgotPasswordDTO) (string, error)
	ResetPassword(dto ResetPasswordDTO) error
}

type RepositoryAPI interface {
	GetCredentialsByEmail(email string) (passwordHash string, user *User, err error)
	GetUserByID(userID int64) (*User, error)
	CreateUser(name, lastName, email, passwordHash string) (*User, error)
	UpdatePassword(userID int64, passwordHash string) error
	CreateResetCode(userID int64, code string, issuedAt time.Time) error
	GetLatestResetCode(userID int64) (*PasswordResetCode, error)
	MarkResetCodeUsed(codeID int64, usedAt time.Time) error
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// PasswordResetCode is one issued recovery code. Codes are single use and
// only valid inside a short window after issuance.
type PasswordResetCode struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"column:user_id" json:"user_id"`
	Code      string     `gorm:"column:code" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
}

func (PasswordResetCode) TableName() string {
	return "password_reset_codes"
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
