package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusDone  TaskStatus = "done"
)

// Task belongs to exactly one user via OwnerID (the owner's id in hex).
// Ownership is enforced by the access guard, not here.
type Task struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string        `bson:"title" json:"title"`
	Content   string        `bson:"content" json:"content"`
	Status    TaskStatus    `bson:"status" json:"status"`
	OwnerID   string        `bson:"ownerId" json:"ownerId"`
	CreatedAt int64         `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64         `bson:"updatedAt" json:"updatedAt"`
}

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}
