package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Code  string `json:"code,omitempty"` // reservation code for manage links
	jwt.RegisteredClaims
}

func newToken(email, role, code, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		Code:  code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"innkeeper"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// NewAdminToken issues a bearer token for the admin JSON API.
func NewAdminToken(email, secret string, ttl time.Duration) (string, error) {
	return newToken(email, "admin", "", secret, ttl)
}

// NewManageToken issues the token embedded in reservation manage links, scoped
// to a single reservation code.
func NewManageToken(email, reservationCode, secret string, ttl time.Duration) (string, error) {
	return newToken(email, "manage", reservationCode, secret, ttl)
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
