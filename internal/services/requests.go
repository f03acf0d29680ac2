package services

import (
	"io"
	"strings"
)

type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=7,nopassword"`
	ContactNo string `json:"contactno" validate:"omitempty,mobile"`
	Address   string `json:"address"`
	Role      string `json:"role" validate:"omitempty,oneof=manager employee"`
}

func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.ContactNo = strings.TrimSpace(r.ContactNo)
	r.Address = strings.TrimSpace(r.Address)
	r.Role = strings.TrimSpace(r.Role)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPatch is a partial user update. Fields lists every key present in
// the request body; nil pointers leave the stored value untouched.
type UserPatch struct {
	Fields    []string `json:"-"`
	Name      *string  `json:"name"`
	Role      *string  `json:"role"`
	Email     *string  `json:"email"`
	Password  *string  `json:"password"`
	ContactNo *string  `json:"contactno"`
	Address   *string  `json:"address"`
}

type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Priority    *int   `json:"priority"`
	Status      string `json:"status"`
	Comment     string `json:"comment"`
}

// TaskPatch is a partial task update, see UserPatch.
type TaskPatch struct {
	Fields      []string `json:"-"`
	Description *string  `json:"description"`
	Priority    *int     `json:"priority"`
	Status      *string  `json:"status"`
	Comment     *string  `json:"comment"`
}

// ListTasksQuery carries the raw GET /tasks query parameters.
type ListTasksQuery struct {
	EmpID    string
	Priority string
	MinDate  string
	MaxDate  string
}

// Upload is an attachment body read from a multipart request.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
