package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreateTaskRequest(t *testing.T) {
	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	tests := []struct {
		name       string
		req        CreateTaskRequest
		wantFields []string
	}{
		{
			name: "valid minimal",
			req:  CreateTaskRequest{Title: "Buy milk"},
		},
		{
			name: "valid full",
			req: CreateTaskRequest{
				Title:       "Ship release",
				Description: "Cut the tag and push",
				Priority:    "high",
				Status:      "in_progress",
				ProjectID:   "507f1f77bcf86cd799439011",
			},
		},
		{
			name:       "missing title",
			req:        CreateTaskRequest{Description: "no title"},
			wantFields: []string{"title"},
		},
		{
			name:       "title too long",
			req:        CreateTaskRequest{Title: long(101)},
			wantFields: []string{"title"},
		},
		{
			name:       "description too long",
			req:        CreateTaskRequest{Title: "ok", Description: long(501)},
			wantFields: []string{"description"},
		},
		{
			name:       "bad priority",
			req:        CreateTaskRequest{Title: "ok", Priority: "urgent"},
			wantFields: []string{"priority"},
		},
		{
			name:       "bad status",
			req:        CreateTaskRequest{Title: "ok", Status: "pending"},
			wantFields: []string{"status"},
		},
		{
			name:       "bad project id",
			req:        CreateTaskRequest{Title: "ok", ProjectID: "zzz"},
			wantFields: []string{"projectId"},
		},
		{
			name:       "several at once",
			req:        CreateTaskRequest{Priority: "urgent", Status: "pending"},
			wantFields: []string{"title", "priority", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fieldErrors := validateStruct(tt.req)
			if len(tt.wantFields) == 0 {
				assert.Empty(t, fieldErrors)
				return
			}
			require.Len(t, fieldErrors, len(tt.wantFields))
			for i, field := range tt.wantFields {
				assert.Equal(t, field, fieldErrors[i].Field)
				assert.NotEmpty(t, fieldErrors[i].Message)
			}
		})
	}
}

func TestWhitespaceOnlyTitleRejected(t *testing.T) {
	treq := CreateTaskRequest{Title: "   \t "}
	treq.Normalize()
	fieldErrors := validateStruct(treq)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "title", fieldErrors[0].Field)

	ureq := UpdateTaskRequest{Title: "  "}
	ureq.Normalize()
	fieldErrors = validateStruct(ureq)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "title", fieldErrors[0].Field)

	preq := ProjectRequest{Title: "   "}
	preq.Normalize()
	fieldErrors = validateStruct(preq)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "title", fieldErrors[0].Field)
}

func TestNormalizeTrimsSurroundingSpace(t *testing.T) {
	req := CreateTaskRequest{Title: "  Buy milk  ", Description: " with notes \n"}
	req.Normalize()
	assert.Empty(t, validateStruct(req))
	assert.Equal(t, "Buy milk", req.Title)
	assert.Equal(t, "with notes", req.Description)
}

func TestValidateProjectRequest(t *testing.T) {
	assert.Empty(t, validateStruct(ProjectRequest{Title: "Q3 roadmap"}))

	fieldErrors := validateStruct(ProjectRequest{})
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "title", fieldErrors[0].Field)
}

func TestValidateRegisterRequest(t *testing.T) {
	assert.Empty(t, validateStruct(RegisterRequest{
		Email:    "user@example.com",
		Password: "hunter22hunter22",
		Name:     "User",
	}))

	fieldErrors := validateStruct(RegisterRequest{Email: "not-an-email", Password: "short", Name: ""})
	fields := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password", "name"}, fields)
}

func TestParseISODate(t *testing.T) {
	got, err := parseISODate("2025-06-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC), got)

	got, err = parseISODate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = parseISODate("15/06/2025")
	assert.Error(t, err)
}
