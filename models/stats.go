package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// UserStats is the per-owner rollup returned by /api/stats/user.
type UserStats struct {
	TotalTasks          int64   `json:"totalTasks"`
	CompletedTasks      int64   `json:"completedTasks"`
	PendingTasks        int64   `json:"pendingTasks"`
	CompletionRate      float64 `json:"completionRate"`
	TotalProjects       int64   `json:"totalProjects"`
	HighPriorityTasks   int64   `json:"highPriorityTasks"`
	OverdueTasks        int64   `json:"overdueTasks"`
	TodayTasks          int64   `json:"todayTasks"`
	TasksWithoutProject int64   `json:"tasksWithoutProject"`
}

// ProjectStats is one row of the per-project breakdown, sorted by task count.
type ProjectStats struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	Title          string             `json:"title" bson:"title"`
	TotalTasks     int64              `json:"totalTasks" bson:"totalTasks"`
	CompletedTasks int64              `json:"completedTasks" bson:"completedTasks"`
	PendingTasks   int64              `json:"pendingTasks" bson:"pendingTasks"`
	CompletionRate float64            `json:"completionRate" bson:"completionRate"`
}

// StatusCount is one bucket of the status distribution.
type StatusCount struct {
	Status TaskStatus `json:"status" bson:"_id"`
	Count  int64      `json:"count" bson:"count"`
}
