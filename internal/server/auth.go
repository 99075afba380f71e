package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// Claims is the bearer token payload. The subject, or user_id for older
// issuers, identifies the caller.
type Claims struct {
	UserID   string `json:"user_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 tokens and turns them into callers.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for c that expires after ttl. It backs the token
// command used in development.
func (a *Authenticator) Issue(c domain.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:     c.Name,
		Role:     string(c.Role),
		ClientID: c.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the caller it names. An unrecognised role
// is kept as sent; the services reject it.
func (a *Authenticator) Verify(token string) (domain.Caller, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return domain.Caller{}, err
	}
	if !parsed.Valid {
		return domain.Caller{}, errors.New("token is not valid")
	}

	id := claims.Subject
	if id == "" {
		id = claims.UserID
	}
	if id == "" {
		return domain.Caller{}, errors.New("token names no user")
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		role = domain.Role(claims.Role)
	}
	return domain.Caller{ID: id, Name: claims.Name, Role: role, ClientID: claims.ClientID}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// caller on the context.
func (a *Authenticator) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authorization required")
		}
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
		}
		caller, err := a.Verify(strings.TrimSpace(token))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
		}
		c.Set(callerKey, caller)
		return next(c)
	}
}

func callerFrom(c echo.Context) domain.Caller {
	caller, _ := c.Get(callerKey).(domain.Caller)
	return caller
}
