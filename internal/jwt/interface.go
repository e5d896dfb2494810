package jwt

import "time"

type TokenManager interface {
	GenerateToken(userID, email, role string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetTokenExpiry() time.Duration
}
