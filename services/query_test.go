package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tagirkamaev/to-do-v2/models"
)

func TestTaskFilterQuery(t *testing.T) {
	owner := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	completed := true
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter TaskFilter
		want   bson.M
	}{
		{
			name:   "owner always pinned",
			filter: TaskFilter{},
			want:   bson.M{"owner": owner},
		},
		{
			name: "all exact-match fields",
			filter: TaskFilter{
				ProjectID: &projectID,
				Status:    models.StatusTodo,
				Priority:  models.PriorityHigh,
				Completed: &completed,
			},
			want: bson.M{
				"owner":     owner,
				"project":   projectID,
				"status":    models.StatusTodo,
				"priority":  models.PriorityHigh,
				"completed": true,
			},
		},
		{
			name:   "search spans title and description",
			filter: TaskFilter{Search: "urgent"},
			want: bson.M{
				"owner": owner,
				"$or": bson.A{
					bson.M{"title": primitive.Regex{Pattern: "urgent", Options: "i"}},
					bson.M{"description": primitive.Regex{Pattern: "urgent", Options: "i"}},
				},
			},
		},
		{
			name:   "regex metacharacters are escaped",
			filter: TaskFilter{Search: "a.b*"},
			want: bson.M{
				"owner": owner,
				"$or": bson.A{
					bson.M{"title": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
					bson.M{"description": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
				},
			},
		},
		{
			name:   "due date range inclusive both bounds",
			filter: TaskFilter{DueAfter: &start, DueBefore: &end},
			want: bson.M{
				"owner":   owner,
				"dueDate": bson.M{"$gte": start, "$lte": end},
			},
		},
		{
			name:   "lower bound only",
			filter: TaskFilter{DueAfter: &start},
			want: bson.M{
				"owner":   owner,
				"dueDate": bson.M{"$gte": start},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Query(owner))
		})
	}
}

func TestPaginationDefaults(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, int64(1), p.Page)
	assert.Equal(t, int64(10), p.Limit)
	assert.Equal(t, int64(0), p.Skip())

	p = Pagination{Page: -3, Limit: 0}.Normalize()
	assert.Equal(t, int64(1), p.Page)
	assert.Equal(t, int64(10), p.Limit)
}

func TestPaginationSkipAndPages(t *testing.T) {
	tests := []struct {
		name      string
		page      Pagination
		total     int64
		wantSkip  int64
		wantPages int64
	}{
		{"first page", Pagination{Page: 1, Limit: 10}, 25, 0, 3},
		{"third page", Pagination{Page: 3, Limit: 10}, 25, 20, 3},
		{"exact multiple", Pagination{Page: 2, Limit: 5}, 20, 5, 4},
		{"single item", Pagination{Page: 1, Limit: 10}, 1, 0, 1},
		{"empty result", Pagination{Page: 1, Limit: 10}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.page.Normalize()
			assert.Equal(t, tt.wantSkip, p.Skip())
			assert.Equal(t, tt.wantPages, p.Pages(tt.total))
		})
	}
}

func TestSortOrder(t *testing.T) {
	require.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, Sort{}.Order())
	require.Equal(t, bson.D{{Key: "dueDate", Value: 1}}, Sort{By: "dueDate", Ascending: true}.Order())
	require.Equal(t, bson.D{{Key: "title", Value: -1}}, Sort{By: "title"}.Order())
}
