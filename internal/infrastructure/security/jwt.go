package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/rajcreationz/livesite/internal/domain/entities/admin"
)

// ValidateJWT checks the signature and returns the claims. Time claims are
// not checked here; callers judge exp against their own clock.
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateAdminToken signs a token whose exp matches the session expiry.
func GenerateAdminToken(session admin.Session, username, jwtSecret string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"type": "admin_session",
		"sub":  username,
		"iat":  now.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// SessionFromToken rebuilds the admin session from a signed token. Invalid
// tokens, and tokens expired at now, yield an unauthenticated session.
func SessionFromToken(tokenString, jwtSecret string, now time.Time) admin.Session {
	if tokenString == "" {
		return admin.Session{}
	}
	claims, err := ValidateJWT(tokenString, jwtSecret)
	if err != nil {
		return admin.Session{}
	}
	if claims["role"] != "admin" {
		return admin.Session{}
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return admin.Session{}
	}
	s := admin.Session{Authenticated: true, ExpiresAt: time.Unix(int64(exp), 0)}
	if !s.IsValid(now) {
		return admin.Session{}
	}
	return s
}
