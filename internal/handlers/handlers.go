package handlers

import (
	"context"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/services"
	"github.com/goccy/go-json"
)

// UserService is the user and session surface used by the HTTP layer.
type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req services.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, user *models.User, token string) error
	LogoutAll(ctx context.Context, user *models.User) error
	List(ctx context.Context, role string) ([]models.User, error)
	Workload(ctx context.Context, role string) ([]models.Workload, error)
	Update(ctx context.Context, caller *models.User, targetID string, patch services.UserPatch) (*models.User, error)
	Delete(ctx context.Context, targetID string) (*models.User, error)
}

// TaskService is the task surface used by the HTTP layer.
type TaskService interface {
	Create(ctx context.Context, caller *models.User, empID string, req services.CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, caller *models.User, q services.ListTasksQuery) ([]models.Task, error)
	Update(ctx context.Context, caller *models.User, taskID string, patch services.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, taskID string) (*models.Task, error)
	AddAttachment(ctx context.Context, caller *models.User, taskID string, upload services.Upload) (*models.Task, error)
	AttachmentURL(ctx context.Context, caller *models.User, taskID, attachmentID string) (string, error)
	URLTTL() string
}

// decodePatch reads a partial-update body into dst and returns the keys
// present, so the allow-list sees exactly what the client tried to set.
func decodePatch(body []byte, dst any) ([]string, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperror.ErrInvalidBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, apperror.ErrInvalidBody
	}

	fields := make([]string, 0, len(raw))
	for key := range raw {
		fields = append(fields, key)
	}
	return fields, nil
}
