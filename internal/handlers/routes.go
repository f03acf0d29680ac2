package handlers

import (
	"github.com/arzan03/TaskManager/internal/middleware"
	"github.com/arzan03/TaskManager/internal/response"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewApp builds the Fiber app with the API's JSON codec and error shape.
func NewApp(log *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "task-manager-api",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: response.ErrorHandler(log),
		BodyLimit:    16 * 1024 * 1024,
	})
}

// RegisterRoutes mounts every endpoint. auth must resolve the caller before
// any handler that reads middleware.CurrentUser.
func RegisterRoutes(app *fiber.App, auth fiber.Handler, authH *AuthHandler, users *UserHandler, tasks *TaskHandler) {
	manager := middleware.ManagerMiddleware

	// User Routes
	app.Post("/users", authH.Register)
	app.Post("/users/login", authH.Login)
	app.Post("/users/logout", auth, authH.Logout)
	app.Post("/users/logoutAll", auth, authH.LogoutAll)
	app.Get("/users", auth, manager, users.List)
	app.Patch("/users/:id", auth, users.Update)
	app.Delete("/users/:id", auth, manager, users.Delete)

	// Task Routes
	app.Post("/tasks/:empid", auth, manager, tasks.Create)
	app.Get("/tasks", auth, tasks.List)
	app.Patch("/tasks/:id", auth, tasks.Update)
	app.Delete("/tasks/:id", auth, manager, tasks.Delete)
	app.Post("/tasks/:id/attachments", auth, tasks.AddAttachment)
	app.Get("/tasks/:id/attachments/:attachmentId", auth, tasks.AttachmentURL)
}
