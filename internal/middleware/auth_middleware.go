package middleware

import (
	"context"
	"strings"

	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	localUser  = "user"
	localToken = "token"
)

// SessionValidator resolves a bearer token to its owner.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware validates the bearer token against the stored sessions and
// exposes the caller through CurrentUser and CurrentToken.
func AuthMiddleware(sessions SessionValidator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))

		user, err := sessions.Validate(c.UserContext(), token)
		if err != nil {
			return response.Error(c, log, err)
		}

		c.Locals(localUser, user)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// CurrentUser returns the caller stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentToken returns the bearer token that authenticated the request.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}
