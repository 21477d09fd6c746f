package middleware

import (
	"errors"
	"fmt"
	"time"

	"maint-logbook/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewTokenHeader carries a renewed token when the presented one is close to expiry.
const NewTokenHeader = "X-New-Token"

// TokenIssuer signs and verifies HS256 bearer tokens for API clients.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

type TokenClaims struct {
	UserID    uint
	Role      models.UserRole
	ExpiresAt time.Time
}

func (t *TokenIssuer) Issue(userID uint, role models.UserRole) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  userID,
		"role": string(role),
		"exp":  time.Now().Add(t.ttl).Unix(),
	}).SignedString(t.secret)
}

func (t *TokenIssuer) Parse(raw string) (TokenClaims, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return TokenClaims{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TokenClaims{}, errors.New("invalid token claims")
	}

	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return TokenClaims{}, fmt.Errorf("token has no user id")
	}
	role, _ := claims["role"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return TokenClaims{}, errors.New("token has no expiry")
	}
	return TokenClaims{UserID: uint(uid), Role: models.UserRole(role), ExpiresAt: exp.Time}, nil
}

// shouldRenew reports whether less than half of the lifetime is left.
func (t *TokenIssuer) shouldRenew(c TokenClaims) bool {
	return time.Until(c.ExpiresAt) < t.ttl/2
}
