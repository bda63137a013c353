package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusArchived   TaskStatus = "archived"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title       string              `json:"title" bson:"title"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	Completed   bool                `json:"completed" bson:"completed"`
	Priority    TaskPriority        `json:"priority" bson:"priority"`
	Status      TaskStatus          `json:"status" bson:"status"`
	DueDate     *time.Time          `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Project     *primitive.ObjectID `json:"project,omitempty" bson:"project,omitempty"`
	Owner       primitive.ObjectID  `json:"owner" bson:"owner"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// TaskSummary is the projection of a task embedded into populated project
// responses.
type TaskSummary struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Completed   bool               `json:"completed" bson:"completed"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// TaskPage is one page of a task listing together with its pagination
// metadata.
type TaskPage struct {
	Tasks []Task `json:"tasks"`
	Total int64  `json:"total"`
	Page  int64  `json:"page"`
	Limit int64  `json:"limit"`
	Pages int64  `json:"pages"`
}
