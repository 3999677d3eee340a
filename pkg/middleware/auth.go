package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const userKey = "user"

var errNoUser = errors.New("no authenticated user in context")

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects the request with 401 unless it carries a bearer
// token that resolves to an existing user. The user is stored in Locals.
func AuthMiddleware(authenticator Authenticator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			logger.Debug("Missing authorization token", zap.String("path", c.Path()))
			return unauthorized(c)
		}

		user, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			logger.Debug("Invalid token", zap.Error(err))
			return unauthorized(c)
		}

		c.Locals(userKey, *user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (models.User, error) {
	user, ok := c.Locals(userKey).(models.User)
	if !ok {
		return models.User{}, errNoUser
	}
	return user, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Could not validate credentials",
	})
}
