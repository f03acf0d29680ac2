package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// ErrDuplicateEmail is returned by the user store when the unique email
// index rejects a write.
var ErrDuplicateEmail = errors.New("email already in use")

// AuthToken is one active session of a user.
type AuthToken struct {
	Token string `bson:"token" json:"token"`
}

// User is a stored account. Password and Tokens are never serialized to
// clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Role      string             `bson:"role" json:"role"`
	ContactNo string             `bson:"contactno,omitempty" json:"contactno,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Tokens    []AuthToken        `bson:"tokens" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// HasToken reports whether token is one of the user's active sessions.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t.Token == token {
			return true
		}
	}
	return false
}

// Workload is one row of the average workload report.
type Workload struct {
	Name      string  `bson:"name" json:"name"`
	Role      string  `bson:"role" json:"role"`
	ContactNo string  `bson:"contactno,omitempty" json:"contactno,omitempty"`
	Email     string  `bson:"email" json:"email"`
	AvgLoad   float64 `bson:"avgload" json:"-"`
	Label     string  `bson:"-" json:"avgload"`
}
