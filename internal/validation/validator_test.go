package validation

import (
	"testing"

	"github.com/arzan03/TaskManager/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,nopassword"`
	Contact  string `json:"contactno" validate:"omitempty,mobile"`
	Role     string `json:"role" validate:"omitempty,oneof=manager employee"`
}

func TestStruct(t *testing.T) {
	valid := signup{Name: "Ann", Email: "ann@example.com", Password: "s3cret!!", Contact: "+1 555-010-9999"}

	tests := []struct {
		name    string
		mutate  func(s *signup)
		message string
	}{
		{"valid", func(s *signup) {}, ""},
		{"missing name", func(s *signup) { s.Name = "" }, "Name is required"},
		{"bad email", func(s *signup) { s.Email = "nope" }, "Email is invalid"},
		{"short password", func(s *signup) { s.Password = "abc" }, "Password is shorter than the minimum allowed length (7)"},
		{"password word", func(s *signup) { s.Password = "MyPassWord1" }, `Password can not contain "password"`},
		{"bad contact", func(s *signup) { s.Contact = "call me" }, "Contactno is invalid"},
		{"bad role", func(s *signup) { s.Role = "admin" }, "admin is not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := Struct(s)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
			assert.Equal(t, 400, appErr.HTTPStatus)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("priority", 10, "min=1,max=10"))

	err := Var("priority", 11, "min=1,max=10")
	require.Error(t, err)
	assert.Equal(t, "Priority must be at most 10", err.Error())

	err = Var("priority", 0, "min=1,max=10")
	require.Error(t, err)
	assert.Equal(t, "Priority must be at least 1", err.Error())
}

func TestIsMobile(t *testing.T) {
	assert.True(t, IsMobile("9876543210"))
	assert.True(t, IsMobile("+91 98765-43210"))
	assert.False(t, IsMobile("12345"))
	assert.False(t, IsMobile("phone"))
}
