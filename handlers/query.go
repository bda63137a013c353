package handlers

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tagirkamaev/to-do-v2/middleware"
	"github.com/tagirkamaev/to-do-v2/models"
	"github.com/tagirkamaev/to-do-v2/services"
)

// ownerFromRequest reads the authenticated caller's id placed in the
// context by the auth middleware. Missing identity means the route was
// wired without it, answered as 401 rather than a panic.
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	owner, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
	}
	return owner, ok
}

// parsePagination reads page/limit query params; anything unparsable or
// non-positive falls back to the defaults in Pagination.Normalize.
func parsePagination(r *http.Request) services.Pagination {
	var p services.Pagination
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil {
		p.Page = v
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil {
		p.Limit = v
	}
	return p.Normalize()
}

// parseSort reads sortBy/sortOrder; only the literal "asc" sorts ascending.
func parseSort(r *http.Request) services.Sort {
	return services.Sort{
		By:        r.URL.Query().Get("sortBy"),
		Ascending: r.URL.Query().Get("sortOrder") == "asc",
	}
}

// parseTaskFilter builds the typed filter from the listing query params.
func parseTaskFilter(r *http.Request) (services.TaskFilter, []FieldError) {
	q := r.URL.Query()
	var filter services.TaskFilter
	var fieldErrors []FieldError

	if v := q.Get("projectId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			fieldErrors = append(fieldErrors, FieldError{Field: "projectId", Message: "Invalid ID format"})
		} else {
			filter.ProjectID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		filter.Status = models.TaskStatus(v)
	}
	if v := q.Get("priority"); v != "" {
		filter.Priority = models.TaskPriority(v)
	}
	switch q.Get("completed") {
	case "true":
		completed := true
		filter.Completed = &completed
	case "false":
		completed := false
		filter.Completed = &completed
	}
	filter.Search = q.Get("search")

	if v := q.Get("startDate"); v != "" {
		t, err := parseISODate(v)
		if err != nil {
			fieldErrors = append(fieldErrors, FieldError{Field: "startDate", Message: "Must be a valid date in ISO 8601 format"})
		} else {
			filter.DueAfter = &t
		}
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseISODate(v)
		if err != nil {
			fieldErrors = append(fieldErrors, FieldError{Field: "endDate", Message: "Must be a valid date in ISO 8601 format"})
		} else {
			filter.DueBefore = &t
		}
	}

	return filter, fieldErrors
}

// pathObjectID parses a path variable as an ObjectID.
func pathObjectID(value, field string) (primitive.ObjectID, *FieldError) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, &FieldError{Field: field, Message: "Invalid ID format"}
	}
	return id, nil
}
