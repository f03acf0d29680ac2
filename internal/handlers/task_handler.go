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

type TaskHandler struct {
	tasks TaskService
	log   *zap.Logger
}

func NewTaskHandler(tasks TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log.Named("task.handler")}
}

// Create assigns a task to the employee in the path.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var request services.CreateTaskRequest
	if err := c.BodyParser(&request); err != nil {
		return response.Error(c, h.log, apperror.ErrInvalidBody)
	}

	task, err := h.tasks.Create(c.UserContext(), middleware.CurrentUser(c), c.Params("empid"), request)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.Status(http.StatusCreated).JSON(task)
}

// List serves GET /tasks?empid=&priority=&minDate=&maxDate=
func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext(), middleware.CurrentUser(c), services.ListTasksQuery{
		EmpID:    c.Query("empid"),
		Priority: c.Query("priority"),
		MinDate:  c.Query("minDate"),
		MaxDate:  c.Query("maxDate"),
	})
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(tasks)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var patch services.TaskPatch
	fields, err := decodePatch(c.Body(), &patch)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	patch.Fields = fields

	task, err := h.tasks.Update(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), patch)
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	task, err := h.tasks.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.JSON(task)
}

// AddAttachment stores the multipart "file" field on the task.
func (h *TaskHandler) AddAttachment(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, h.log, apperror.RequiredField("File"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, h.log, apperror.Validation("failed to open file"))
	}
	defer file.Close()

	task, err := h.tasks.AddAttachment(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), services.Upload{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		return response.Error(c, h.log, err)
	}
	return c.Status(http.StatusCreated).JSON(task)
}

// AttachmentURL returns a temporary download link for an attachment.
func (h *TaskHandler) AttachmentURL(c *fiber.Ctx) error {
	url, err := h.tasks.AttachmentURL(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), c.Params("attachmentId"))
	if err != nil {
		return response.Error(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"url":        url,
		"expires_in": h.tasks.URLTTL(),
	})
}
