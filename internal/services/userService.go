package services

import (
	"context"
	"errors"
	"strings"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/arzan03/TaskManager/internal/models"
	"github.com/arzan03/TaskManager/internal/validation"
	"go.uber.org/zap"
)

var errEmailTaken = apperror.Validation(models.ErrDuplicateEmail.Error())

type UserService struct {
	users      UserStore
	tasks      TaskStore
	objects    ObjectStore
	sessions   *SessionService
	policy     *AccessPolicy
	bcryptCost int
	log        *zap.Logger
}

// NewUserService wires the user operations. objects may be nil when
// attachment storage is disabled.
func NewUserService(users UserStore, tasks TaskStore, objects ObjectStore, sessions *SessionService,
	policy *AccessPolicy, bcryptCost int, log *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		tasks:      tasks,
		objects:    objects,
		sessions:   sessions,
		policy:     policy,
		bcryptCost: bcryptCost,
		log:        log.Named("users"),
	}
}

// Register creates an employee (or the requested role), hashes the
// password, then opens the first session.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, "", err
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	if existing != nil {
		return nil, "", errEmailTaken
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	now := timeNow()
	user := &models.User{
		Name:      req.Name,
		Role:      req.Role,
		ContactNo: req.ContactNo,
		Email:     req.Email,
		Password:  hash,
		Address:   req.Address,
		Tokens:    []models.AuthToken{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, "", errEmailTaken
		}
		return nil, "", apperror.Internal(err)
	}

	token, err := s.sessions.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", user.Role))
	return user, token, nil
}

// Login checks credentials and opens a new session. Unknown email and wrong
// password fail with the same error.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	if user == nil || !VerifyPassword(strings.TrimSpace(req.Password), user.Password) {
		return nil, "", apperror.ErrLoginFailed
	}

	token, err := s.sessions.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Logout(ctx context.Context, user *models.User, token string) error {
	return s.sessions.Revoke(ctx, user, token)
}

func (s *UserService) LogoutAll(ctx context.Context, user *models.User) error {
	return s.sessions.RevokeAll(ctx, user)
}

// List returns users, optionally only those with the given role.
func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

// Workload reports the average task priority of every user that has tasks,
// bucketed by WorkloadLabel.
func (s *UserService) Workload(ctx context.Context, role string) ([]models.Workload, error) {
	rows, err := s.users.Workload(ctx, role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range rows {
		rows[i].Label = WorkloadLabel(rows[i].AvgLoad)
	}
	return rows, nil
}

// WorkloadLabel buckets a mean priority: <=4 Low, >=8 High, Medium between.
func WorkloadLabel(avg float64) string {
	switch {
	case avg <= 4:
		return "Low"
	case avg >= 8:
		return "High"
	default:
		return "Medium"
	}
}

// Update applies patch to the user identified by targetID. Managers may edit
// anyone; employees only themselves and only the self-service fields.
func (s *UserService) Update(ctx context.Context, caller *models.User, targetID string, patch UserPatch) (*models.User, error) {
	resource := ResourceUser
	if !caller.IsManager() {
		if caller.ID.Hex() != targetID {
			return nil, apperror.ErrUpdateOthers
		}
		resource = ResourceSelf
	}
	if !s.policy.IsAllowed(caller.Role, resource, patch.Fields) {
		return nil, apperror.ErrInvalidUpdates
	}
	if err := s.validatePatch(&patch); err != nil {
		return nil, err
	}

	target := caller
	if caller.IsManager() {
		id, ok := parseID(targetID)
		if !ok {
			return nil, apperror.ErrNotFound
		}
		found, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if found == nil {
			return nil, apperror.ErrNotFound
		}
		target = found
	}

	if patch.Name != nil {
		target.Name = *patch.Name
	}
	if patch.Role != nil {
		target.Role = *patch.Role
	}
	if patch.Email != nil {
		target.Email = *patch.Email
	}
	if patch.ContactNo != nil {
		target.ContactNo = *patch.ContactNo
	}
	if patch.Address != nil {
		target.Address = *patch.Address
	}
	if patch.Password != nil {
		hash, err := HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		target.Password = hash
	}

	if err := s.users.UpdateProfile(ctx, target); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, errEmailTaken
		}
		return nil, apperror.Internal(err)
	}
	return target, nil
}

// validatePatch trims the supplied values and checks them with the same
// rules as registration.
func (s *UserService) validatePatch(p *UserPatch) error {
	checks := []struct {
		field string
		value *string
		tag   string
	}{
		{"name", p.Name, "required"},
		{"role", p.Role, "oneof=manager employee"},
		{"email", p.Email, "required,email"},
		{"password", p.Password, "required,min=7,nopassword"},
		{"contactno", p.ContactNo, "omitempty,mobile"},
	}

	trim(p.Name, p.Role, p.Password, p.ContactNo, p.Address)
	if p.Email != nil {
		*p.Email = normalizeEmail(*p.Email)
	}

	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := validation.Var(c.field, *c.value, c.tag); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the user together with every task assigned to them:
// tasks first, then their attachment objects, then the user record.
func (s *UserService) Delete(ctx context.Context, targetID string) (*models.User, error) {
	id, ok := parseID(targetID)
	if !ok {
		return nil, nil
	}

	owned, err := s.tasks.Find(ctx, models.TaskQuery{AssignTo: &id})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	removed, err := s.tasks.DeleteByAssignee(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	removeAttachments(ctx, s.objects, s.log, owned...)

	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	s.log.Info("user deleted", zap.String("user_id", targetID), zap.Int64("tasks_removed", removed), zap.Bool("found", user != nil))
	return user, nil
}

func trim(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}
