package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/jwt"
)

// DefaultCookieName is the cookie the login page writes
const DefaultCookieName = "loggedInUser"

// Identity is the signed-in viewer as read from a request
type Identity struct {
	UserID int    `json:"userId"`
	Token  string `json:"token"`
}

// Source resolves the viewer from request headers.
// A nil Identity with a nil error means the request is anonymous.
type Source interface {
	Resolve(headers map[string]string) (*Identity, error)
}

// ============================================================
// Cookie source - {"userId": 5, "token": "..."} as written at login
// ============================================================

// CookieSource reads the JSON session cookie
type CookieSource struct {
	name     string
	verifier *jwt.Verifier
}

// NewCookieSource creates a cookie source. With a verifier the embedded token
// must be valid and belong to the cookie's user.
func NewCookieSource(name string, verifier *jwt.Verifier) *CookieSource {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieSource{name: name, verifier: verifier}
}

func (s *CookieSource) Resolve(headers map[string]string) (*Identity, error) {
	raw := Header(headers, "Cookie")
	if raw == "" {
		return nil, nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, apperrors.InvalidFormat("cookie", s.name).WithCause(err)
	}

	for _, c := range cookies {
		if c.Name != s.name {
			continue
		}
		value, err := url.QueryUnescape(c.Value)
		if err != nil {
			return nil, apperrors.InvalidFormat("cookie", s.name).WithCause(err)
		}
		var id Identity
		if err := json.Unmarshal([]byte(value), &id); err != nil {
			return nil, apperrors.InvalidFormat("cookie", s.name).WithCause(err)
		}
		if id.UserID <= 0 || id.Token == "" {
			return nil, apperrors.Unauthorized("Session cookie is incomplete")
		}
		if s.verifier != nil {
			claims, err := s.verifier.ValidateToken(id.Token)
			if err != nil {
				return nil, apperrors.InvalidToken().WithCause(err)
			}
			if uid, err := claims.ResolveUserID(); err != nil || uid != id.UserID {
				return nil, apperrors.InvalidToken().WithDetails("token belongs to another user")
			}
		}
		return &id, nil
	}
	return nil, nil
}

// ============================================================
// Bearer source - Authorization: Bearer <token>
// ============================================================

// BearerSource derives the viewer from a bearer token's claims
type BearerSource struct {
	verifier *jwt.Verifier
}

// NewBearerSource creates a bearer source. Without a verifier claims are decoded unverified;
// the event service still authorizes every mutation.
func NewBearerSource(verifier *jwt.Verifier) *BearerSource {
	return &BearerSource{verifier: verifier}
}

func (s *BearerSource) Resolve(headers map[string]string) (*Identity, error) {
	auth := Header(headers, "Authorization")
	if auth == "" {
		return nil, nil
	}
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, apperrors.InvalidToken().WithDetails("expected a Bearer token")
	}
	token = strings.TrimSpace(token)

	var (
		claims *jwt.Claims
		err    error
	)
	if s.verifier != nil {
		claims, err = s.verifier.ValidateToken(token)
	} else {
		claims, err = jwt.DecodeToken(token)
	}
	if err != nil {
		return nil, apperrors.InvalidToken().WithCause(err)
	}

	uid, err := claims.ResolveUserID()
	if err != nil {
		return nil, apperrors.InvalidToken().WithCause(err)
	}
	return &Identity{UserID: uid, Token: token}, nil
}

// ============================================================
// Chain
// ============================================================

// Chain tries each source in order; the first identity wins.
// An error from a source stops the chain.
type Chain []Source

func (c Chain) Resolve(headers map[string]string) (*Identity, error) {
	for _, src := range c {
		id, err := src.Resolve(headers)
		if err != nil || id != nil {
			return id, err
		}
	}
	return nil, nil
}

// Header looks a header up case-insensitively; API Gateway lower-cases names, net/http canonicalizes them
func Header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
