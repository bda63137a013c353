package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the structured 400 body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

// newValidator reports field names by their json tag so the error list
// matches the wire format.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string `json:"status" validate:"omitempty,oneof=todo in_progress done archived"`
	DueDate     string `json:"dueDate"`
	ProjectID   string `json:"projectId" validate:"omitempty,len=24,hexadecimal"`
}

// UpdateTaskRequest mirrors CreateTaskRequest plus the completed flag.
// ProjectID stays a pointer: an absent key leaves membership alone, an
// explicit null or "" detaches the task.
type UpdateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Completed   *bool   `json:"completed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string  `json:"status" validate:"omitempty,oneof=todo in_progress done archived"`
	DueDate     *string `json:"dueDate"`
	ProjectID   *string `json:"projectId"`
}

type ProjectRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// Normalize trims user-supplied text before validation so a
// whitespace-only title is rejected as empty instead of slipping through
// and being trimmed to "" at write time.
func (r *CreateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *UpdateTaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
	}
}

func (r *ProjectRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// validateStruct runs the validator and flattens its output into
// field-level errors.
func validateStruct(v interface{}) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "body", Message: "Invalid request payload"}}
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len", "hexadecimal":
		return "Invalid ID format"
	default:
		return fmt.Sprintf("Invalid value for %s", fe.Field())
	}
}

// parseISODate accepts RFC 3339 timestamps and bare dates.
func parseISODate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
