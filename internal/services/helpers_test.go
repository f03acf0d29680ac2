package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/services"
	"github.com/arzan03/TaskManager/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type env struct {
	db       *testutil.MemDB
	users    *testutil.MemUserStore
	tasks    *testutil.MemTaskStore
	objects  *testutil.MemObjectStore
	sessions *services.SessionService
	userSvc  *services.UserService
	taskSvc  *services.TaskService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewMemDB()
	e := &env{
		db:      db,
		users:   db.Users(),
		tasks:   db.Tasks(),
		objects: testutil.NewMemObjectStore(),
	}

	policy, err := services.NewAccessPolicy()
	require.NoError(t, err)

	e.sessions = services.NewSessionService(e.users, testSecret)
	e.userSvc = services.NewUserService(e.users, e.tasks, e.objects, e.sessions, policy, bcrypt.MinCost, zap.NewNop())
	e.taskSvc = services.NewTaskService(e.tasks, e.users, e.objects, policy, 10*time.Minute, zap.NewNop())
	return e
}

// register creates a user through the service and returns it with its
// first token.
func (e *env) register(t *testing.T, name, role string) (*models.User, string) {
	t.Helper()

	user, token, err := e.userSvc.Register(context.Background(), services.RegisterRequest{
		Name:      name,
		Email:     name + "@example.com",
		Password:  "s3cret-pass",
		ContactNo: "9876543210",
		Role:      role,
	})
	require.NoError(t, err)
	return user, token
}

func (e *env) createTask(t *testing.T, manager, assignee *models.User, priority int) *models.Task {
	t.Helper()

	task, err := e.taskSvc.Create(context.Background(), manager, assignee.ID.Hex(), services.CreateTaskRequest{
		Description: "task for " + assignee.Name,
		Priority:    &priority,
	})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
