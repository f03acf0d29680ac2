// Package testutil provides in-memory implementations of the service store
// interfaces for tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/arzan03/TaskManager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemDB is a shared backing store so that the workload report can join
// users with tasks the way the aggregation pipeline does.
type MemDB struct {
	mu    sync.Mutex
	users []models.User
	tasks []models.Task
	seq   int64
}

func NewMemDB() *MemDB {
	return &MemDB{}
}

func (db *MemDB) Users() *MemUserStore { return &MemUserStore{db: db} }
func (db *MemDB) Tasks() *MemTaskStore { return &MemTaskStore{db: db} }

// stamp returns strictly increasing times so newest-first ordering is
// deterministic within a test.
func (db *MemDB) stamp() time.Time {
	db.seq++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(db.seq) * time.Second)
}

func copyUser(u models.User) *models.User {
	u.Tokens = append([]models.AuthToken{}, u.Tokens...)
	return &u
}

func copyTask(t models.Task) *models.Task {
	t.Attachments = append([]models.Attachment(nil), t.Attachments...)
	if t.LastChangedBy != nil {
		id := *t.LastChangedBy
		t.LastChangedBy = &id
	}
	return &t
}

type MemUserStore struct{ db *MemDB }

func (s *MemUserStore) Create(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.db.users = append(s.db.users, *copyUser(*user))
	return nil
}

func (s *MemUserStore) find(match func(u *models.User) bool) *models.User {
	for i := range s.db.users {
		if match(&s.db.users[i]) {
			return &s.db.users[i]
		}
	}
	return nil
}

func (s *MemUserStore) lookup(match func(u *models.User) bool) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if u := s.find(match); u != nil {
		return copyUser(*u), nil
	}
	return nil, nil
}

func (s *MemUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.lookup(func(u *models.User) bool { return u.ID == id })
}

func (s *MemUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.lookup(func(u *models.User) bool { return u.Email == email })
}

func (s *MemUserStore) FindByToken(_ context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	return s.lookup(func(u *models.User) bool { return u.ID == id && u.HasToken(token) })
}

func (s *MemUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if other := s.find(func(u *models.User) bool { return u.Email == user.Email && u.ID != user.ID }); other != nil {
		return models.ErrDuplicateEmail
	}
	stored := s.find(func(u *models.User) bool { return u.ID == user.ID })
	if stored == nil {
		return nil
	}
	user.UpdatedAt = s.db.stamp()
	stored.Name = user.Name
	stored.Role = user.Role
	stored.ContactNo = user.ContactNo
	stored.Email = user.Email
	stored.Password = user.Password
	stored.Address = user.Address
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

func (s *MemUserStore) mutate(id primitive.ObjectID, fn func(u *models.User)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if u := s.find(func(u *models.User) bool { return u.ID == id }); u != nil {
		fn(u)
	}
	return nil
}

func (s *MemUserStore) PushToken(_ context.Context, id primitive.ObjectID, token string) error {
	return s.mutate(id, func(u *models.User) {
		u.Tokens = append(u.Tokens, models.AuthToken{Token: token})
	})
}

func (s *MemUserStore) PullToken(_ context.Context, id primitive.ObjectID, token string) error {
	return s.mutate(id, func(u *models.User) {
		kept := []models.AuthToken{}
		for _, t := range u.Tokens {
			if t.Token != token {
				kept = append(kept, t)
			}
		}
		u.Tokens = kept
	})
}

func (s *MemUserStore) ClearTokens(_ context.Context, id primitive.ObjectID) error {
	return s.mutate(id, func(u *models.User) { u.Tokens = []models.AuthToken{} })
}

func (s *MemUserStore) List(_ context.Context, role string) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	users := []models.User{}
	for _, u := range s.db.users {
		if role == "" || u.Role == role {
			users = append(users, *copyUser(u))
		}
	}
	return users, nil
}

func (s *MemUserStore) Workload(_ context.Context, role string) ([]models.Workload, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows := []models.Workload{}
	for _, u := range s.db.users {
		if role != "" && u.Role != role {
			continue
		}
		sum, n := 0, 0
		for _, t := range s.db.tasks {
			if t.AssignTo == u.ID {
				sum += t.Priority
				n++
			}
		}
		if n == 0 {
			continue
		}
		rows = append(rows, models.Workload{
			Name:      u.Name,
			Role:      u.Role,
			ContactNo: u.ContactNo,
			Email:     u.Email,
			AvgLoad:   float64(sum) / float64(n),
		})
	}
	return rows, nil
}

func (s *MemUserStore) Delete(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, u := range s.db.users {
		if u.ID == id {
			s.db.users = append(s.db.users[:i], s.db.users[i+1:]...)
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// Count returns the number of stored users.
func (s *MemUserStore) Count() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.users)
}

type MemTaskStore struct{ db *MemDB }

func (s *MemTaskStore) Create(_ context.Context, task *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	task.CreatedAt = s.db.stamp()
	task.UpdatedAt = task.CreatedAt
	s.db.tasks = append(s.db.tasks, *copyTask(*task))
	return nil
}

func (s *MemTaskStore) FindByID(_ context.Context, id primitive.ObjectID, assignee *primitive.ObjectID) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, t := range s.db.tasks {
		if t.ID == id && (assignee == nil || t.AssignTo == *assignee) {
			return copyTask(t), nil
		}
	}
	return nil, nil
}

func (s *MemTaskStore) Find(_ context.Context, q models.TaskQuery) ([]models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range s.db.tasks {
		if q.AssignTo != nil && t.AssignTo != *q.AssignTo {
			continue
		}
		if q.MinDate != nil && t.CreatedAt.Before(*q.MinDate) {
			continue
		}
		if q.MaxDate != nil && t.CreatedAt.After(*q.MaxDate) {
			continue
		}
		tasks = append(tasks, *copyTask(t))
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if q.PrioritySort != 0 && tasks[i].Priority != tasks[j].Priority {
			if q.PrioritySort > 0 {
				return tasks[i].Priority < tasks[j].Priority
			}
			return tasks[i].Priority > tasks[j].Priority
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *MemTaskStore) Update(_ context.Context, task *models.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i := range s.db.tasks {
		if s.db.tasks[i].ID == task.ID {
			task.UpdatedAt = s.db.stamp()
			s.db.tasks[i] = *copyTask(*task)
			return nil
		}
	}
	return nil
}

func (s *MemTaskStore) Delete(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, t := range s.db.tasks {
		if t.ID == id {
			s.db.tasks = append(s.db.tasks[:i], s.db.tasks[i+1:]...)
			return copyTask(t), nil
		}
	}
	return nil, nil
}

func (s *MemTaskStore) DeleteByAssignee(_ context.Context, assignee primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	kept := s.db.tasks[:0]
	var removed int64
	for _, t := range s.db.tasks {
		if t.AssignTo == assignee {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.db.tasks = kept
	return removed, nil
}

// CountAssignedTo returns how many stored tasks are assigned to id.
func (s *MemTaskStore) CountAssignedTo(id primitive.ObjectID) int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n := 0
	for _, t := range s.db.tasks {
		if t.AssignTo == id {
			n++
		}
	}
	return n
}

// MemObjectStore keeps attachment bodies in memory.
type MemObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemObjectStore() *MemObjectStore {
	return &MemObjectStore{objects: map[string][]byte{}}
}

func (s *MemObjectStore) Put(_ context.Context, object string, r io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[object] = buf.Bytes()
	return nil
}

func (s *MemObjectStore) Remove(_ context.Context, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, object)
	return nil
}

func (s *MemObjectStore) PresignedURL(_ context.Context, object, _ string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[object]; !ok {
		return "", fmt.Errorf("no such object %s", object)
	}
	return fmt.Sprintf("http://objects.test/%s?expires=%d", object, int(expiry.Seconds())), nil
}

// Get returns the stored body of object.
func (s *MemObjectStore) Get(object string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[object]
	return b, ok
}

// Len returns the number of stored objects.
func (s *MemObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
