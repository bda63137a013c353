package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tagirkamaev/to-do-v2/models"
	"github.com/tagirkamaev/to-do-v2/services"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	filter, fieldErrors := parseTaskFilter(r)
	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	page, err := h.service.ListTasks(r.Context(), owner, filter, parseSort(r), parsePagination(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	term := r.URL.Query().Get("q")
	if term == "" {
		writeMessage(w, http.StatusBadRequest, "Search term is required")
		return
	}

	page, err := h.service.SearchTasks(r.Context(), owner, term, parsePagination(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	taskID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	task, err := h.service.GetTask(r.Context(), owner, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Normalize()

	fieldErrors := validateStruct(req)

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		Status:      models.TaskStatus(req.Status),
	}

	if req.DueDate != "" {
		due, err := parseISODate(req.DueDate)
		if err != nil {
			fieldErrors = append(fieldErrors, FieldError{Field: "dueDate", Message: "Must be a valid date in ISO 8601 format"})
		} else {
			input.DueDate = &due
		}
	}
	if req.ProjectID != "" {
		if id, err := primitive.ObjectIDFromHex(req.ProjectID); err == nil {
			input.ProjectID = &id
		}
	}

	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	task, err := h.service.CreateTask(r.Context(), owner, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	taskID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var req UpdateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Key presence matters for projectId: absent leaves membership alone,
	// null or "" detaches.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	_, projectSet := raw["projectId"]
	_, dueDateSet := raw["dueDate"]

	req.Normalize()
	fieldErrors := validateStruct(req)

	input := services.UpdateTaskInput{
		Title:       &req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		ProjectSet:  projectSet,
	}
	if req.Priority != "" {
		priority := models.TaskPriority(req.Priority)
		input.Priority = &priority
	}
	if req.Status != "" {
		status := models.TaskStatus(req.Status)
		input.Status = &status
	}

	if dueDateSet {
		if req.DueDate == nil || *req.DueDate == "" {
			input.ClearDueDate = true
		} else {
			due, err := parseISODate(*req.DueDate)
			if err != nil {
				fieldErrors = append(fieldErrors, FieldError{Field: "dueDate", Message: "Must be a valid date in ISO 8601 format"})
			} else {
				input.DueDate = &due
			}
		}
	}

	if projectSet && req.ProjectID != nil && *req.ProjectID != "" {
		id, err := primitive.ObjectIDFromHex(*req.ProjectID)
		if err != nil {
			fieldErrors = append(fieldErrors, FieldError{Field: "projectId", Message: "Invalid ID format"})
		} else {
			input.ProjectID = &id
		}
	}

	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), owner, taskID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	taskID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	if err := h.service.DeleteTask(r.Context(), owner, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task deleted successfully")
}
