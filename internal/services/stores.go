package services

import (
	"context"
	"io"
	"time"

	"github.com/arzan03/TaskManager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore persists users. Lookups return (nil, nil) when nothing matches.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	PushToken(ctx context.Context, id primitive.ObjectID, token string) error
	PullToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokens(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, role string) ([]models.User, error)
	Workload(ctx context.Context, role string) ([]models.Workload, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// TaskStore persists tasks. Lookups return (nil, nil) when nothing matches.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID, assignee *primitive.ObjectID) (*models.Task, error)
	Find(ctx context.Context, q models.TaskQuery) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	DeleteByAssignee(ctx context.Context, assignee primitive.ObjectID) (int64, error)
}

// ObjectStore holds attachment bodies.
type ObjectStore interface {
	Put(ctx context.Context, object string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, object string) error
	PresignedURL(ctx context.Context, object, filename string, expiry time.Duration) (string, error)
}

func parseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}
