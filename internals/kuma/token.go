package kuma

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTokenValid reports whether the stored upstream session token is
// still worth presenting to loginByToken. The token is signed upstream,
// so only the expiry claim is inspected, unverified.
func sessionTokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		// upstream tokens may carry no expiry at all
		return true
	}
	return exp.Time.After(now.Add(30 * time.Second))
}
