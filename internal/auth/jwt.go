// Package auth validates bearer tokens on the sustainability API.
package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims accepted by the API
type Claims struct {
	UserID     string   `json:"user_id"`
	Role       string   `json:"role"`
	Warehouses []string `json:"warehouses,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessWarehouse reports whether the token covers warehouseID. A token
// without a warehouse list covers every warehouse.
func (c *Claims) CanAccessWarehouse(warehouseID string) bool {
	if len(c.Warehouses) == 0 {
		return true
	}
	return slices.Contains(c.Warehouses, warehouseID)
}

// GenerateToken signs an HS256 token for a user
func GenerateToken(secret, userID, role string, warehouses []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		Role:       role,
		Warehouses: warehouses,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses an HMAC-signed token and returns its claims
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
