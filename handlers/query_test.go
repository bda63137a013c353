package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tagirkamaev/to-do-v2/models"
	"github.com/tagirkamaev/to-do-v2/services"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  services.Pagination
	}{
		{"defaults", "", services.Pagination{Page: 1, Limit: 10}},
		{"explicit", "?page=3&limit=25", services.Pagination{Page: 3, Limit: 25}},
		{"garbage falls back", "?page=abc&limit=-5", services.Pagination{Page: 1, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/tasks"+tt.query, nil)
			assert.Equal(t, tt.want, parsePagination(r))
		})
	}
}

func TestParseSort(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tasks?sortBy=dueDate&sortOrder=asc", nil)
	assert.Equal(t, services.Sort{By: "dueDate", Ascending: true}, parseSort(r))

	r = httptest.NewRequest("GET", "/api/tasks?sortOrder=descending", nil)
	assert.Equal(t, services.Sort{}, parseSort(r))
}

func TestParseTaskFilter(t *testing.T) {
	projectID := primitive.NewObjectID()

	r := httptest.NewRequest("GET",
		"/api/tasks?projectId="+projectID.Hex()+
			"&status=todo&priority=high&completed=true&search=urgent"+
			"&startDate=2025-03-01&endDate=2025-03-31", nil)

	filter, fieldErrors := parseTaskFilter(r)
	require.Empty(t, fieldErrors)

	require.NotNil(t, filter.ProjectID)
	assert.Equal(t, projectID, *filter.ProjectID)
	assert.Equal(t, models.StatusTodo, filter.Status)
	assert.Equal(t, models.PriorityHigh, filter.Priority)
	require.NotNil(t, filter.Completed)
	assert.True(t, *filter.Completed)
	assert.Equal(t, "urgent", filter.Search)
	require.NotNil(t, filter.DueAfter)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *filter.DueAfter)
	require.NotNil(t, filter.DueBefore)
}

func TestParseTaskFilterIgnoresUnknownCompleted(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tasks?completed=yes", nil)
	filter, fieldErrors := parseTaskFilter(r)
	assert.Empty(t, fieldErrors)
	assert.Nil(t, filter.Completed)
}

func TestParseTaskFilterReportsBadInput(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/tasks?projectId=nothex&startDate=tomorrow", nil)
	_, fieldErrors := parseTaskFilter(r)
	require.Len(t, fieldErrors, 2)
	assert.Equal(t, "projectId", fieldErrors[0].Field)
	assert.Equal(t, "startDate", fieldErrors[1].Field)
}

func TestPathObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	got, ferr := pathObjectID(id.Hex(), "id")
	require.Nil(t, ferr)
	assert.Equal(t, id, got)

	_, ferr = pathObjectID("not-an-id", "taskId")
	require.NotNil(t, ferr)
	assert.Equal(t, "taskId", ferr.Field)
}
