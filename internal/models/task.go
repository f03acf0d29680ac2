package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusToDo      = "To Do"
	StatusInProcess = "In Process"
	StatusCompleted = "Completed"

	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = MinPriority
)

type Task struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Description   string              `bson:"description" json:"description"`
	Priority      int                 `bson:"priority" json:"priority"`
	Comment       string              `bson:"comment,omitempty" json:"comment,omitempty"`
	Status        string              `bson:"status" json:"status"`
	AssignBy      primitive.ObjectID  `bson:"assignby" json:"assignby"`
	AssignTo      primitive.ObjectID  `bson:"assignto" json:"assignto"`
	LastChangedBy *primitive.ObjectID `bson:"lastchangedby,omitempty" json:"lastchangedby,omitempty"`
	Attachments   []Attachment        `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Attachment is a file stored in object storage under Object.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Object      string             `bson:"object" json:"-"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	UploadedBy  primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

// Attachment returns the attachment with the given id, or nil.
func (t *Task) Attachment(id primitive.ObjectID) *Attachment {
	for i := range t.Attachments {
		if t.Attachments[i].ID == id {
			return &t.Attachments[i]
		}
	}
	return nil
}

// TaskQuery selects and orders tasks for listing.
type TaskQuery struct {
	AssignTo *primitive.ObjectID
	MinDate  *time.Time
	MaxDate  *time.Time
	// PrioritySort is 1 (ascending), -1 (descending) or 0 to order by
	// newest createdAt.
	PrioritySort int
}
