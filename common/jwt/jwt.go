package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the session token issued by the event service on login
type Claims struct {
	UserID int    `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates session tokens with a shared HMAC secret
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier; an empty secret yields a verifier that only decodes claims
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// GenerateToken signs a session token for a user. Used by the debug CLI and tests.
func (v *Verifier) GenerateToken(userID int, email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("cannot sign tokens without a secret")
	}
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ValidateToken validates a token's signature and expiry and returns its claims
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("no secret configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// DecodeToken reads claims without checking the signature.
// The backend still authorizes every mutation; the client only needs the user id for rendering.
func DecodeToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, jwt.ErrTokenExpired
	}
	return claims, nil
}

// ResolveUserID extracts the user id, falling back to the subject claim
func (c *Claims) ResolveUserID() (int, error) {
	if c.UserID > 0 {
		return c.UserID, nil
	}
	if c.Subject != "" {
		id, err := strconv.Atoi(c.Subject)
		if err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, errors.New("token carries no user id")
}
