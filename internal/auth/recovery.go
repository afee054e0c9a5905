package auth

import (
	"crypto/rand"
	"math/big"
	"time"
)

// DefaultRecoveryCodeWindow is how long an issued recovery code stays valid.
const DefaultRecoveryCodeWindow = time.Minute

// GenerateRecoveryCode returns a cryptographically random 5-digit code.
func GenerateRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	code := n.Int64() + 10000
	return formatCode(code), nil
}

func formatCode(n int64) string {
	digits := []byte{
		byte('0' + n/10000%10),
		byte('0' + n/1000%10),
		byte('0' + n/100%10),
		byte('0' + n/10%10),
		byte('0' + n%10),
	}
	return string(digits)
}

// ValidRecoveryCodeFormat reports whether code looks like an issued code:
// exactly five ASCII digits.
func ValidRecoveryCodeFormat(code string) bool {
	if len(code) != 5 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CodeValid reports whether a code issued at issuedAt is still inside its
// validity window at now. Pure function of its inputs so the policy can be
// tested without a clock.
func CodeValid(issuedAt, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultRecoveryCodeWindow
	}
	if now.Before(issuedAt) {
		return false
	}
	return now.Sub(issuedAt) <= window
}
