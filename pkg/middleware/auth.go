// Package middleware provides the session and role guards for HTTP routes.
package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey    = "user"
	identityKey = "identity"
)

// IdentityReader turns a verified session token into an identity.
type IdentityReader interface {
	IdentityFromToken(token *jwt.Token) (domain.Identity, error)
}

// JwtProtected verifies the bearer token and stores the caller's identity in
// the request locals. Read it back with CurrentIdentity.
func JwtProtected(cfg *config.Jwt, ids IdentityReader) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   tokenKey,
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals(tokenKey).(*jwt.Token)
			id, err := ids.IdentityFromToken(token)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid or expired JWT", err, fiber.StatusUnauthorized)
			}
			c.Locals(identityKey, id)
			return c.Next()
		},
	})
}

// RequireRole rejects callers whose session role is not one of roles.
// It must run after JwtProtected.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return common.ProblemDetailsJSON(c, "Unauthorized", domain.ErrUnauthorized, "missing user context")
		}
		if !slices.Contains(roles, id.Role) {
			return common.ProblemDetailsJSON(c, "Forbidden", domain.ErrForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by JwtProtected.
func CurrentIdentity(c *fiber.Ctx) (domain.Identity, bool) {
	id, ok := c.Locals(identityKey).(domain.Identity)
	return id, ok
}

// jwtError answers 401 when there is no session at all or the token does not
// verify. Only an Authorization header that is present but not a bearer
// credential is a 400.
func jwtError(c *fiber.Ctx, err error) error {
	missingOrMalformed := errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.EqualFold(err.Error(), jwtware.ErrJWTMissingOrMalformed.Error())
	switch {
	case missingOrMalformed && strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "":
		return common.ProblemDetailsJSON(c, "Unauthorized", nil, "missing session token", fiber.StatusUnauthorized)
	case missingOrMalformed:
		return common.ProblemDetailsJSON(c, "Malformed JWT", nil, err.Error(), fiber.StatusBadRequest)
	default:
		return common.ProblemDetailsJSON(c, "Invalid or expired JWT", nil, err.Error(), fiber.StatusUnauthorized)
	}
}
