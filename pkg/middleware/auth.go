// Package middleware contains fiber middleware shared by the HTTP routes.
package middleware

import (
	"errors"

	"github.com/amirasaad/speibank/pkg/apiutil"
	"github.com/amirasaad/speibank/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// TokenLocalsKey is where the verified *jwt.Token is stored.
const TokenLocalsKey = "user"

// JwtProtected verifies the HS256 bearer token issued by the auth service.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	secret := ""
	if cfg != nil {
		secret = cfg.Secret
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		ContextKey:   TokenLocalsKey,
		ErrorHandler: jwtError,
	})
}

// jwtError answers 400 for a header that is present but not a bearer token
// and 401 for everything else.
func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		if c.Get(fiber.HeaderAuthorization) != "" {
			return apiutil.ErrorResponseJSON(c, fiber.StatusBadRequest, "Bad Request", "malformed bearer token")
		}
		return apiutil.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing bearer token")
	}
	return apiutil.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "invalid or expired token")
}
