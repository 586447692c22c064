// Package auth issues and validates the bearer tokens that guard /query.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAgent is the role carried by tokens minted for the SQL assistant
const RoleAgent = "agent"

// DefaultTTL is the lifetime of tokens minted by the assistant client
const DefaultTTL = 5 * time.Minute

// ErrMissingToken is returned when no bearer token is present
var ErrMissingToken = errors.New("JWT token is required in Authorization header")

// Claims represents the claims in a query token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Signer mints and validates HS256 tokens with a shared secret
type Signer struct {
	secret []byte
}

// NewSigner creates a signer for secret
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// GenerateToken mints a token for subject valid for ttl
func (s *Signer) GenerateToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: RoleAgent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a token and returns its claims
func (s *Signer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.Role != RoleAgent {
			return nil, errors.New("token role is not allowed to run queries")
		}
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}
