// Package response renders errors as the API's {"error": message} body.
package response

import (
	"errors"
	"net/http"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Error writes err to the client. AppErrors keep their status and message;
// anything else becomes a 500 and is only described in the log.
func Error(c *fiber.Ctx, log *zap.Logger, err error) error {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("code", appErr.Code),
			zap.Error(err))
	}

	return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message})
}

// ErrorHandler is the Fiber fallback for errors returned by handlers and
// for framework errors such as unknown routes.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		return Error(c, log, err)
	}
}
