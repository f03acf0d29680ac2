package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arzan03/TaskManager/internal/handlers"
	"github.com/arzan03/TaskManager/internal/middleware"
	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/services"
	"github.com/arzan03/TaskManager/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cret-pass"

type testAPI struct {
	t       *testing.T
	app     *fiber.App
	tasks   *testutil.MemTaskStore
	objects *testutil.MemObjectStore
}

type authResponse struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := testutil.NewMemDB()
	users, tasks := db.Users(), db.Tasks()
	objects := testutil.NewMemObjectStore()
	log := zap.NewNop()

	policy, err := services.NewAccessPolicy()
	require.NoError(t, err)
	sessions := services.NewSessionService(users, "test-secret")
	userSvc := services.NewUserService(users, tasks, objects, sessions, policy, bcrypt.MinCost, log)
	taskSvc := services.NewTaskService(tasks, users, objects, policy, 10*time.Minute, log)

	app := handlers.NewApp(log)
	handlers.RegisterRoutes(app,
		middleware.AuthMiddleware(sessions, log),
		handlers.NewAuthHandler(userSvc, log),
		handlers.NewUserHandler(userSvc, log),
		handlers.NewTaskHandler(taskSvc, log),
	)

	return &testAPI{t: t, app: app, tasks: tasks, objects: objects}
}

func (a *testAPI) do(method, path, token string, body any) (int, []byte) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.send(req)
}

func (a *testAPI) send(req *http.Request) (int, []byte) {
	a.t.Helper()

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, data
}

func (a *testAPI) register(name, role string) (string, string) {
	a.t.Helper()

	status, body := a.do(http.MethodPost, "/users", "", map[string]any{
		"name":      name,
		"email":     name + "@example.com",
		"password":  testPassword,
		"contactno": "9876543210",
		"role":      role,
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))

	var resp authResponse
	require.NoError(a.t, json.Unmarshal(body, &resp))
	return resp.User["_id"].(string), resp.Token
}

func (a *testAPI) createTask(token, empID string, priority int) string {
	a.t.Helper()

	status, body := a.do(http.MethodPost, "/tasks/"+empID, token, map[string]any{
		"description": fmt.Sprintf("task p%d", priority),
		"priority":    priority,
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))

	var task models.Task
	require.NoError(a.t, json.Unmarshal(body, &task))
	return task.ID.Hex()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

// TestAPIEndpoints walks the main manager/employee flow end to end.
func TestAPIEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var managerToken, employeeID, employeeToken, taskID string

	t.Run("Register Users", func(t *testing.T) {
		_, managerToken = api.register("boss", models.RoleManager)
		employeeID, employeeToken = api.register("ann", "")
	})

	t.Run("Login", func(t *testing.T) {
		status, body := api.do(http.MethodPost, "/users/login", "", map[string]string{
			"email":    "ANN@example.com",
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, status, string(body))

		resp := decode[authResponse](t, body)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, employeeID, resp.User["_id"])
		assert.NotContains(t, resp.User, "password")
		assert.NotContains(t, resp.User, "tokens")
	})

	t.Run("Create Task", func(t *testing.T) {
		taskID = api.createTask(managerToken, employeeID, 4)
	})

	t.Run("List Tasks", func(t *testing.T) {
		status, body := api.do(http.MethodGet, "/tasks", employeeToken, nil)
		require.Equal(t, http.StatusOK, status)

		tasks := decode[[]models.Task](t, body)
		require.Len(t, tasks, 1)
		assert.Equal(t, taskID, tasks[0].ID.Hex())
		assert.Equal(t, models.StatusToDo, tasks[0].Status)
	})

	t.Run("Employee Updates Status", func(t *testing.T) {
		status, body := api.do(http.MethodPatch, "/tasks/"+taskID, employeeToken, map[string]string{
			"status":  models.StatusInProcess,
			"comment": "started",
		})
		require.Equal(t, http.StatusOK, status, string(body))

		task := decode[models.Task](t, body)
		assert.Equal(t, models.StatusInProcess, task.Status)
		require.NotNil(t, task.LastChangedBy)
		assert.Equal(t, employeeID, task.LastChangedBy.Hex())
	})

	t.Run("Delete Task", func(t *testing.T) {
		status, body := api.do(http.MethodDelete, "/tasks/"+taskID, managerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, taskID, decode[models.Task](t, body).ID.Hex())

		status, body = api.do(http.MethodDelete, "/tasks/"+taskID, managerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "null", string(body))
	})

	t.Run("Logout", func(t *testing.T) {
		status, _ := api.do(http.MethodPost, "/users/logout", employeeToken, nil)
		require.Equal(t, http.StatusOK, status)

		status, body := api.do(http.MethodGet, "/tasks", employeeToken, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "please, authenticate.", decode[errorResponse](t, body).Error)
	})
}

func TestAuthentication(t *testing.T) {
	api := newTestAPI(t)
	api.register("ann", "")

	for name, token := range map[string]string{"missing": "", "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			status, body := api.do(http.MethodGet, "/tasks", token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "please, authenticate.", decode[errorResponse](t, body).Error)
		})
	}

	t.Run("login failures look identical", func(t *testing.T) {
		wrongStatus, wrongBody := api.do(http.MethodPost, "/users/login", "", map[string]string{
			"email": "ann@example.com", "password": "wrong-pass",
		})
		unknownStatus, unknownBody := api.do(http.MethodPost, "/users/login", "", map[string]string{
			"email": "ghost@example.com", "password": testPassword,
		})

		assert.Equal(t, http.StatusBadRequest, wrongStatus)
		assert.Equal(t, wrongStatus, unknownStatus)
		assert.Equal(t, string(wrongBody), string(unknownBody))
		assert.Equal(t, "Unable to login", decode[errorResponse](t, wrongBody).Error)
	})

	t.Run("register rejects password containing password", func(t *testing.T) {
		status, _ := api.do(http.MethodPost, "/users", "", map[string]string{
			"name": "x", "email": "x@example.com", "password": "MyPassword99",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("logoutAll", func(t *testing.T) {
		_, first := api.register("bob", "")
		status, body := api.do(http.MethodPost, "/users/login", "", map[string]string{
			"email": "bob@example.com", "password": testPassword,
		})
		require.Equal(t, http.StatusOK, status)
		second := decode[authResponse](t, body).Token

		status, _ = api.do(http.MethodPost, "/users/logout", first, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = api.do(http.MethodGet, "/tasks", second, nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = api.do(http.MethodPost, "/users/logoutAll", second, nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = api.do(http.MethodGet, "/tasks", second, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestManagerOnlyRoutes(t *testing.T) {
	api := newTestAPI(t)
	_, managerToken := api.register("boss", models.RoleManager)
	annID, annToken := api.register("ann", "")
	bobID, _ := api.register("bob", "")
	taskID := api.createTask(managerToken, bobID, 3)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"list users", http.MethodGet, "/users", nil},
		{"delete user", http.MethodDelete, "/users/" + bobID, nil},
		{"create task", http.MethodPost, "/tasks/" + annID, map[string]any{"description": "self-assigned"}},
		{"delete task", http.MethodDelete, "/tasks/" + taskID, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := api.do(tt.method, tt.path, annToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "you have no rights for this operation.", decode[errorResponse](t, body).Error)
		})
	}

	assert.Equal(t, 1, api.tasks.CountAssignedTo(mustID(t, bobID)))
}

func TestTaskRules(t *testing.T) {
	api := newTestAPI(t)
	_, managerToken := api.register("boss", models.RoleManager)
	annID, annToken := api.register("ann", "")
	bobID, _ := api.register("bob", "")

	t.Run("priority bounds", func(t *testing.T) {
		for _, p := range []int{0, 11} {
			status, _ := api.do(http.MethodPost, "/tasks/"+annID, managerToken, map[string]any{"description": "x", "priority": p})
			assert.Equal(t, http.StatusBadRequest, status, "priority %d", p)
		}
		for _, p := range []int{1, 10} {
			api.createTask(managerToken, annID, p)
		}
	})

	t.Run("employee cannot edit priority", func(t *testing.T) {
		taskID := api.createTask(managerToken, annID, 5)

		status, body := api.do(http.MethodPatch, "/tasks/"+taskID, annToken, map[string]any{"priority": 1})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid updates!", decode[errorResponse](t, body).Error)

		status, body = api.do(http.MethodGet, "/tasks?empid="+annID, managerToken, nil)
		require.Equal(t, http.StatusOK, status)
		for _, task := range decode[[]models.Task](t, body) {
			if task.ID.Hex() == taskID {
				assert.Equal(t, 5, task.Priority)
				assert.Nil(t, task.LastChangedBy)
			}
		}
	})

	t.Run("employee empid filter stays scoped", func(t *testing.T) {
		api.createTask(managerToken, bobID, 9)

		status, body := api.do(http.MethodGet, "/tasks?empid="+bobID, annToken, nil)
		require.Equal(t, http.StatusOK, status)
		for _, task := range decode[[]models.Task](t, body) {
			assert.Equal(t, annID, task.AssignTo.Hex())
		}
	})

	t.Run("no-op update keeps lastchangedby", func(t *testing.T) {
		taskID := api.createTask(managerToken, annID, 2)

		status, body := api.do(http.MethodPatch, "/tasks/"+taskID, managerToken, map[string]any{"priority": 2, "status": models.StatusToDo})
		require.Equal(t, http.StatusOK, status)
		assert.Nil(t, decode[models.Task](t, body).LastChangedBy)
	})

	t.Run("malformed patch body", func(t *testing.T) {
		taskID := api.createTask(managerToken, annID, 2)

		req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID, bytes.NewBufferString(`{"priority":"high"`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+managerToken)
		status, _ := api.send(req)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("missing task", func(t *testing.T) {
		status, _ := api.do(http.MethodPatch, "/tasks/64b7f0c2a1b2c3d4e5f60718", managerToken, map[string]any{"status": models.StatusCompleted})
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestUserAdministration(t *testing.T) {
	api := newTestAPI(t)
	_, managerToken := api.register("boss", models.RoleManager)
	annID, annToken := api.register("ann", "")
	bobID, _ := api.register("bob", "")
	carlID, _ := api.register("carl", "")

	for _, p := range []int{2, 4, 6} {
		api.createTask(managerToken, annID, p)
	}
	for _, p := range []int{8, 9} {
		api.createTask(managerToken, bobID, p)
	}
	for _, p := range []int{5, 5} {
		api.createTask(managerToken, carlID, p)
	}

	t.Run("role filter", func(t *testing.T) {
		status, body := api.do(http.MethodGet, "/users?role=employee", managerToken, nil)
		require.Equal(t, http.StatusOK, status)

		users := decode[[]map[string]any](t, body)
		assert.Len(t, users, 3)
		for _, u := range users {
			assert.Equal(t, models.RoleEmployee, u["role"])
			assert.NotContains(t, u, "password")
			assert.NotContains(t, u, "tokens")
		}
	})

	t.Run("average load", func(t *testing.T) {
		status, body := api.do(http.MethodGet, "/users?avgLoad=true&role=employee", managerToken, nil)
		require.Equal(t, http.StatusOK, status)

		labels := map[string]string{}
		for _, row := range decode[[]map[string]any](t, body) {
			labels[row["name"].(string)] = row["avgload"].(string)
		}
		assert.Equal(t, map[string]string{"ann": "Low", "bob": "High", "carl": "Medium"}, labels)
	})

	t.Run("employee edits own profile only", func(t *testing.T) {
		status, body := api.do(http.MethodPatch, "/users/"+annID, annToken, map[string]string{"address": "1 Main St"})
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, "1 Main St", decode[map[string]any](t, body)["address"])

		status, body = api.do(http.MethodPatch, "/users/"+annID, annToken, map[string]string{"role": models.RoleManager})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid updates!", decode[errorResponse](t, body).Error)

		status, body = api.do(http.MethodPatch, "/users/"+bobID, annToken, map[string]string{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "can't update others information.", decode[errorResponse](t, body).Error)
	})

	t.Run("manager deletes user and their tasks", func(t *testing.T) {
		status, body := api.do(http.MethodDelete, "/users/"+annID, managerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, annID, decode[map[string]any](t, body)["_id"])

		assert.Equal(t, 0, api.tasks.CountAssignedTo(mustID(t, annID)))
		assert.Equal(t, 2, api.tasks.CountAssignedTo(mustID(t, bobID)))

		status, _ = api.do(http.MethodGet, "/tasks", annToken, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestAttachments(t *testing.T) {
	api := newTestAPI(t)
	_, managerToken := api.register("boss", models.RoleManager)
	annID, annToken := api.register("ann", "")
	taskID := api.createTask(managerToken, annID, 3)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("This is a test file for upload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID+"/attachments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+annToken)

	status, resp := api.send(req)
	require.Equal(t, http.StatusCreated, status, string(resp))

	task := decode[models.Task](t, resp)
	require.Len(t, task.Attachments, 1)
	assert.Equal(t, "notes.txt", task.Attachments[0].Name)
	assert.Equal(t, 1, api.objects.Len())

	status, resp = api.do(http.MethodGet, "/tasks/"+taskID+"/attachments/"+task.Attachments[0].ID.Hex(), managerToken, nil)
	require.Equal(t, http.StatusOK, status, string(resp))
	link := decode[map[string]string](t, resp)
	assert.NotEmpty(t, link["url"])
	assert.Equal(t, "10m0s", link["expires_in"])

	status, _ = api.do(http.MethodPost, "/tasks/"+taskID+"/attachments", annToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, decode[errorResponse](t, body).Error)
}

func mustID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
