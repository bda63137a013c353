package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagirkamaev/to-do-v2/models"
)

// StatsService computes read-only rollups per request. Every query runs
// through the circuit breaker so a struggling database fails fast instead
// of piling up aggregation work.
type StatsService struct {
	tasksCollection    *mongo.Collection
	projectsCollection *mongo.Collection
	breaker            *gobreaker.CircuitBreaker
}

func NewStatsService(db *mongo.Database, breaker *gobreaker.CircuitBreaker) *StatsService {
	return &StatsService{
		tasksCollection:    db.Collection("tasks"),
		projectsCollection: db.Collection("projects"),
		breaker:            breaker,
	}
}

// UserStats returns the owner's task/project totals.
func (s *StatsService) UserStats(ctx context.Context, owner primitive.ObjectID) (*models.UserStats, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.userStats(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.UserStats), nil
}

func (s *StatsService) userStats(ctx context.Context, owner primitive.ObjectID) (*models.UserStats, error) {
	totalTasks, err := s.tasksCollection.CountDocuments(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %v", err)
	}

	completedTasks, err := s.tasksCollection.CountDocuments(ctx, bson.M{"owner": owner, "completed": true})
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %v", err)
	}

	totalProjects, err := s.projectsCollection.CountDocuments(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %v", err)
	}

	highPriorityTasks, err := s.tasksCollection.CountDocuments(ctx, bson.M{
		"owner":     owner,
		"priority":  models.PriorityHigh,
		"completed": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count high priority tasks: %v", err)
	}

	now := time.Now()
	overdueTasks, err := s.tasksCollection.CountDocuments(ctx, bson.M{
		"owner":     owner,
		"dueDate":   bson.M{"$lt": now},
		"completed": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %v", err)
	}

	startOfDay, endOfDay := dayBounds(now)
	todayTasks, err := s.tasksCollection.CountDocuments(ctx, bson.M{
		"owner":   owner,
		"dueDate": bson.M{"$gte": startOfDay, "$lte": endOfDay},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count today's tasks: %v", err)
	}

	tasksWithoutProject, err := s.tasksCollection.CountDocuments(ctx, bson.M{
		"owner":   owner,
		"project": bson.M{"$exists": false},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks without project: %v", err)
	}

	return &models.UserStats{
		TotalTasks:          totalTasks,
		CompletedTasks:      completedTasks,
		PendingTasks:        totalTasks - completedTasks,
		CompletionRate:      completionRate(completedTasks, totalTasks),
		TotalProjects:       totalProjects,
		HighPriorityTasks:   highPriorityTasks,
		OverdueTasks:        overdueTasks,
		TodayTasks:          todayTasks,
		TasksWithoutProject: tasksWithoutProject,
	}, nil
}

// ProjectStats returns the per-project breakdown, sorted by task count
// descending.
func (s *StatsService) ProjectStats(ctx context.Context, owner primitive.ObjectID) ([]models.ProjectStats, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.projectStats(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.ProjectStats), nil
}

func (s *StatsService) projectStats(ctx context.Context, owner primitive.ObjectID) ([]models.ProjectStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner": owner}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "tasks",
			"localField":   "_id",
			"foreignField": "project",
			"as":           "projectTasks",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        1,
			"title":      1,
			"totalTasks": bson.M{"$size": "$projectTasks"},
			"completedTasks": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$projectTasks",
				"as":    "task",
				"cond":  bson.M{"$eq": bson.A{"$$task.completed", true}},
			}}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"pendingTasks": bson.M{"$subtract": bson.A{"$totalTasks", "$completedTasks"}},
			"completionRate": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$totalTasks", 0}},
				bson.M{"$multiply": bson.A{
					bson.M{"$divide": bson.A{"$completedTasks", "$totalTasks"}},
					100,
				}},
				0,
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalTasks", Value: -1}}}},
	}

	cursor, err := s.projectsCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate project stats: %v", err)
	}
	defer cursor.Close(ctx)

	stats := []models.ProjectStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode project stats: %v", err)
	}
	return stats, nil
}

// StatusDistribution groups the owner's tasks by status, counted and sorted
// descending.
func (s *StatsService) StatusDistribution(ctx context.Context, owner primitive.ObjectID) ([]models.StatusCount, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.statusDistribution(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.StatusCount), nil
}

func (s *StatsService) statusDistribution(ctx context.Context, owner primitive.ObjectID) ([]models.StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner": owner}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cursor, err := s.tasksCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status distribution: %v", err)
	}
	defer cursor.Close(ctx)

	distribution := []models.StatusCount{}
	if err := cursor.All(ctx, &distribution); err != nil {
		return nil, fmt.Errorf("failed to decode status distribution: %v", err)
	}
	return distribution, nil
}

// completionRate is completed/total as a percentage, 0 when there are no
// tasks.
func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// dayBounds returns the inclusive start and end of the day containing t,
// in server-local time.
func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end := time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
	return start, end
}
