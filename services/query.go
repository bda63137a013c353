package services

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tagirkamaev/to-do-v2/models"
)

// TaskFilter is the typed query predicate for task listings. Zero values
// mean "not filtered"; the owner is always pinned separately and is never
// part of this struct.
type TaskFilter struct {
	ProjectID *primitive.ObjectID
	Status    models.TaskStatus
	Priority  models.TaskPriority
	Completed *bool
	Search    string
	DueAfter  *time.Time
	DueBefore *time.Time
}

// Query builds the conjunctive bson predicate for the given owner.
func (f TaskFilter) Query(owner primitive.ObjectID) bson.M {
	filter := bson.M{"owner": owner}

	if f.ProjectID != nil {
		filter["project"] = *f.ProjectID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	if f.Search != "" {
		rx := searchRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
		}
	}
	if f.DueAfter != nil || f.DueBefore != nil {
		due := bson.M{}
		if f.DueAfter != nil {
			due["$gte"] = *f.DueAfter
		}
		if f.DueBefore != nil {
			due["$lte"] = *f.DueBefore
		}
		filter["dueDate"] = due
	}

	return filter
}

// searchRegex turns a user-supplied term into a case-insensitive substring
// match, with regex metacharacters neutralized.
func searchRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

// Pagination carries 1-indexed page/limit. Normalize applies the defaults
// (page 1, limit 10) and rejects non-positive values.
type Pagination struct {
	Page  int64
	Limit int64
}

func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	return p
}

func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// Pages is ceil(total/limit).
func (p Pagination) Pages(total int64) int64 {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Sort describes the listing order. An empty By falls back to createdAt;
// ascending must be requested explicitly, everything else sorts descending.
type Sort struct {
	By        string
	Ascending bool
}

func (s Sort) Order() bson.D {
	field := s.By
	if field == "" {
		field = "createdAt"
	}
	dir := -1
	if s.Ascending {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}}
}

// findOptions combines sort and pagination into driver options.
func findOptions(sort Sort, page Pagination) *options.FindOptions {
	return options.Find().
		SetSort(sort.Order()).
		SetSkip(page.Skip()).
		SetLimit(page.Limit)
}
