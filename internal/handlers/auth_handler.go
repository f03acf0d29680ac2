package handlers

import (
	"net/http"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/arzan03/TaskManager/internal/middleware"
	"github.com/arzan03/TaskManager/internal/response"
	"github.com/arzan03/TaskManager/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler serves registration and session endpoints.
type AuthHandler struct {
	users UserService
	log   *zap.Logger
}

func NewAuthHandler(users UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log.Named("auth.handler")}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request services.RegisterRequest
	if err := c.BodyParser(&request); err != nil {
		return response.Error(c, h.log, apperror.ErrInvalidBody)
	}

	user, token, err := h.users.Register(c.UserContext(), request)
	if err != nil {
		return response.Error(c, h.log, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request services.LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return response.Error(c, h.log, apperror.ErrInvalidBody)
	}

	user, token, err := h.users.Login(c.UserContext(), request)
	if err != nil {
		return response.Error(c, h.log, err)
	}

	return c.JSON(fiber.Map{"user": user, "token": token})
}

// Logout ends the session that authenticated this request.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.users.Logout(c.UserContext(), middleware.CurrentUser(c), middleware.CurrentToken(c)); err != nil {
		return response.Error(c, h.log, err)
	}
	return c.SendStatus(http.StatusOK)
}

// LogoutAll ends every session of the caller.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	if err := h.users.LogoutAll(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return response.Error(c, h.log, err)
	}
	return c.SendStatus(http.StatusOK)
}
