package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are the informational fields decoded from a bearer token.
type Claims struct {
	UserID    string
	ExpiresAt *time.Time
}

// DecodeClaims extracts claims from the token without verifying its
// signature. The result is for display only and must not gate any request.
func DecodeClaims(token string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	claims := &Claims{}
	switch v := mapClaims["user_id"].(type) {
	case string:
		claims.UserID = v
	case float64:
		claims.UserID = fmt.Sprintf("%.0f", v)
	}

	var exp int64
	switch v := mapClaims["exp"].(type) {
	case float64:
		exp = int64(v)
	case json.Number:
		exp, _ = v.Int64()
	}
	if exp > 0 {
		t := time.Unix(exp, 0)
		claims.ExpiresAt = &t
	}

	return claims, nil
}
