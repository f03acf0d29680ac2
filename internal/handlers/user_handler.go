package handlers

import (
	"github.com/arzan03/TaskManager/internal/middleware"
	"github.com/arzan03/TaskManager/internal/response"
	"github.com/arzan03/TaskManager/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	users UserService
	log   *zap.Logger
}

func NewUserHandler(users UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log.Named("user.handler")}
}

// List serves GET /users?role=&avgLoad=
func (h *UserHandler) List(c *fiber.Ctx) error {
	role := c.Query("role")

	if avgLoad := c.Query("avgLoad"); avgLoad != "" && avgLoad != "false" && avgLoad != "0" {
		rows, err := h.users.Workload(c.UserContext(), role)
		if err != nil {
			return response.Error(c, h.log, err)
		}
		return c.JSON(rows)
	}

	users, err := h.users.List(c.UserContext(), role)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var patch services.UserPatch
	fields, err := decodePatch(c.Body(), &patch)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	patch.Fields = fields

	user, err := h.users.Update(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), patch)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(user)
}

// Delete removes the user and every task assigned to them. The body is the
// deleted user, or null when no user had that id.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	user, err := h.users.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(user)
}
