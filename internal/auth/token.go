package auth

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an unlock session stays valid before the
// client must unlock again.
const DefaultSessionTTL = 8 * time.Hour

// TokenService issues and validates the HMAC-SHA256 session tokens handed
// out on a successful unlock. The signing key is generated per process, so
// tokens never outlive a restart; this is a single-tenant local service, not
// a distributed identity system.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService with a random per-process key.
func NewTokenService(issuer string, ttl time.Duration) (*TokenService, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generating session key: %w", err)
	}

	return &TokenService{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// Issue creates a new session token.
func (s *TokenService) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token.
func (s *TokenService) Validate(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid session token")
	}
	return nil
}
