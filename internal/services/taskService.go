package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var timeNow = time.Now

var (
	dateTimeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"}
	dateLayouts     = []string{"2006-01-02", "01/02/2006"}
)

type TaskService struct {
	tasks   TaskStore
	users   UserStore
	objects ObjectStore
	policy  *AccessPolicy
	urlTTL  time.Duration
	log     *zap.Logger
}

// NewTaskService wires the task operations. objects may be nil, in which
// case attachment operations report apperror.ErrStorageUnavailable.
func NewTaskService(tasks TaskStore, users UserStore, objects ObjectStore, policy *AccessPolicy,
	urlTTL time.Duration, log *zap.Logger) *TaskService {
	return &TaskService{
		tasks:   tasks,
		users:   users,
		objects: objects,
		policy:  policy,
		urlTTL:  urlTTL,
		log:     log.Named("tasks"),
	}
}

// Create assigns a new task from caller to the user identified by empID.
func (s *TaskService) Create(ctx context.Context, caller *models.User, empID string, req CreateTaskRequest) (*models.Task, error) {
	req.Description = strings.TrimSpace(req.Description)
	req.Comment = strings.TrimSpace(req.Comment)
	req.Status = strings.TrimSpace(req.Status)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	priority := models.DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
		if err := checkPriority(priority); err != nil {
			return nil, err
		}
	}
	status := models.StatusToDo
	if req.Status != "" {
		if err := checkStatus(req.Status); err != nil {
			return nil, err
		}
		status = req.Status
	}

	assignee, ok := parseID(empID)
	if !ok {
		return nil, apperror.InvalidField("Assignto")
	}
	user, err := s.users.FindByID(ctx, assignee)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.Validation("Assignto does not reference an existing user")
	}

	now := timeNow()
	task := &models.Task{
		Description: req.Description,
		Priority:    priority,
		Comment:     req.Comment,
		Status:      status,
		AssignBy:    caller.ID,
		AssignTo:    assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperror.Internal(err)
	}

	s.log.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("assignby", caller.ID.Hex()),
		zap.String("assignto", empID))
	return task, nil
}

// List returns the tasks visible to caller: every task (or one employee's
// with EmpID) for managers, only their own for employees.
func (s *TaskService) List(ctx context.Context, caller *models.User, q ListTasksQuery) ([]models.Task, error) {
	query := models.TaskQuery{}

	switch {
	case !caller.IsManager():
		query.AssignTo = &caller.ID
	case q.EmpID != "":
		id, ok := parseID(q.EmpID)
		if !ok {
			return nil, apperror.InvalidField("Empid")
		}
		query.AssignTo = &id
	}

	if q.Priority != "" {
		query.PrioritySort = -1
		if q.Priority == "high" {
			query.PrioritySort = 1
		}
	}

	if q.MinDate != "" {
		t, err := parseDate(q.MinDate, false)
		if err != nil {
			return nil, apperror.InvalidField("MinDate")
		}
		query.MinDate = &t
	}
	if q.MaxDate != "" {
		t, err := parseDate(q.MaxDate, true)
		if err != nil {
			return nil, apperror.InvalidField("MaxDate")
		}
		query.MaxDate = &t
	}

	tasks, err := s.tasks.Find(ctx, query)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain date used
// as an upper bound covers the whole day.
func parseDate(raw string, upper bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if upper {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// findVisible loads a task by id, restricted to the caller's own tasks
// unless caller is a manager.
func (s *TaskService) findVisible(ctx context.Context, caller *models.User, taskID string) (*models.Task, error) {
	id, ok := parseID(taskID)
	if !ok {
		return nil, apperror.ErrNotFound
	}

	var assignee *primitive.ObjectID
	if !caller.IsManager() {
		assignee = &caller.ID
	}

	task, err := s.tasks.FindByID(ctx, id, assignee)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if task == nil {
		return nil, apperror.ErrNotFound
	}
	return task, nil
}

// Update applies patch after checking every field against the caller's
// allow-list. lastchangedby moves to caller only when a value changes.
func (s *TaskService) Update(ctx context.Context, caller *models.User, taskID string, patch TaskPatch) (*models.Task, error) {
	if !s.policy.IsAllowed(caller.Role, ResourceTask, patch.Fields) {
		return nil, apperror.ErrInvalidUpdates
	}

	task, err := s.findVisible(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	trim(patch.Description, patch.Status, patch.Comment)
	if patch.Description != nil {
		if err := validation.Var("description", *patch.Description, "required"); err != nil {
			return nil, err
		}
	}
	if patch.Priority != nil {
		if err := checkPriority(*patch.Priority); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if err := checkStatus(*patch.Status); err != nil {
			return nil, err
		}
	}

	changed := false
	if patch.Description != nil && *patch.Description != task.Description {
		task.Description = *patch.Description
		changed = true
	}
	if patch.Priority != nil && *patch.Priority != task.Priority {
		task.Priority = *patch.Priority
		changed = true
	}
	if patch.Status != nil && *patch.Status != task.Status {
		task.Status = *patch.Status
		changed = true
	}
	if patch.Comment != nil && *patch.Comment != task.Comment {
		task.Comment = *patch.Comment
		changed = true
	}
	if !changed {
		return task, nil
	}

	task.LastChangedBy = &caller.ID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperror.Internal(err)
	}
	return task, nil
}

// Delete removes the task and its attachment objects. A missing task yields
// (nil, nil).
func (s *TaskService) Delete(ctx context.Context, taskID string) (*models.Task, error) {
	id, ok := parseID(taskID)
	if !ok {
		return nil, nil
	}

	task, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if task != nil {
		removeAttachments(ctx, s.objects, s.log, *task)
		s.log.Info("task deleted", zap.String("task_id", taskID))
	}
	return task, nil
}

func checkPriority(p int) error {
	return validation.Var("priority", p, fmt.Sprintf("min=%d,max=%d", models.MinPriority, models.MaxPriority))
}

func checkStatus(status string) error {
	switch status {
	case models.StatusToDo, models.StatusInProcess, models.StatusCompleted:
		return nil
	}
	return apperror.Validation(fmt.Sprintf("%s is not supported.", status))
}
