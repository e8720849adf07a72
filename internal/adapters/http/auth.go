package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig holds the HS256 secret write routes are checked against. An
// empty secret turns the check off.
type AuthConfig struct {
	Secret []byte
	Issuer string
}

// Claims is the JWT payload accepted by the API.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

const actorKey = "actor"

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(cfg.Secret) == 0 {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return errUnauthorized(c, "missing bearer token")
		}

		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
		if cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(cfg.Issuer))
		}
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return cfg.Secret, nil
		}, opts...)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return errUnauthorized(c, "token expired")
			}
			return errUnauthorized(c, "invalid token")
		}

		name := claims.Name
		if name == "" {
			name = claims.Subject
		}
		c.Locals(actorKey, name)
		return c.Next()
	}
}

// IssueToken signs a token for subject valid for ttl.
func IssueToken(cfg AuthConfig, subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
}

// actor names the caller for status messages.
func actor(c *fiber.Ctx) string {
	s, _ := c.Locals(actorKey).(string)
	return s
}
