package middleware

import (
	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/gofiber/fiber/v2"
)

// ManagerMiddleware lets only managers through. It must run after
// AuthMiddleware.
func ManagerMiddleware(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil || !user.IsManager() {
		return c.Status(apperror.ErrNoRights.HTTPStatus).JSON(fiber.Map{"error": apperror.ErrNoRights.Message})
	}
	return c.Next()
}
