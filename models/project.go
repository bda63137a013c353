package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title     string               `json:"title" bson:"title"`
	Owner     primitive.ObjectID   `json:"owner" bson:"owner"`
	Tasks     []primitive.ObjectID `json:"tasks" bson:"tasks"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PopulatedProject is a project whose membership list has been joined with
// the member task summaries. Only tasks still owned by the caller appear.
type PopulatedProject struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Owner     primitive.ObjectID `json:"owner"`
	Tasks     []TaskSummary      `json:"tasks"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ProjectPage is one page of a project listing together with its pagination
// metadata.
type ProjectPage struct {
	Projects []PopulatedProject `json:"projects"`
	Total    int64              `json:"total"`
	Page     int64              `json:"page"`
	Limit    int64              `json:"limit"`
	Pages    int64              `json:"pages"`
}
