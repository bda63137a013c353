package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tagirkamaev/to-do-v2/services"
)

type ProjectHandler struct {
	service     *services.ProjectService
	taskService *services.TaskService
}

func NewProjectHandler(service *services.ProjectService, taskService *services.TaskService) *ProjectHandler {
	return &ProjectHandler{service: service, taskService: taskService}
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.ListProjects(r.Context(), owner, parseSort(r), parsePagination(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *ProjectHandler) SearchProjects(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	term := r.URL.Query().Get("q")
	if term == "" {
		writeMessage(w, http.StatusBadRequest, "Search term is required")
		return
	}

	page, err := h.service.SearchProjects(r.Context(), owner, term, parsePagination(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	projectID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	project, err := h.service.GetProject(r.Context(), owner, projectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Normalize()
	if fieldErrors := validateStruct(req); len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	project, err := h.service.CreateProject(r.Context(), owner, req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	projectID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.Normalize()
	if fieldErrors := validateStruct(req); len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	project, err := h.service.UpdateProject(r.Context(), owner, projectID, req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	projectID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	if err := h.service.DeleteProject(r.Context(), owner, projectID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Project deleted successfully")
}

// ProjectTasks lists the project's tasks through the regular task filter
// with projectId pinned, so status/priority/search/pagination all apply.
func (h *ProjectHandler) ProjectTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	projectID, ferr := pathObjectID(mux.Vars(r)["id"], "id")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	if _, err := h.service.GetProject(r.Context(), owner, projectID); err != nil {
		handleServiceError(w, err)
		return
	}

	filter, fieldErrors := parseTaskFilter(r)
	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}
	filter.ProjectID = &projectID

	page, err := h.taskService.ListTasks(r.Context(), owner, filter, parseSort(r), parsePagination(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *ProjectHandler) AttachTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	projectID, ferr := pathObjectID(vars["projectId"], "projectId")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}
	taskID, ferr := pathObjectID(vars["taskId"], "taskId")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	project, err := h.service.AttachTask(r.Context(), owner, projectID, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DetachTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	projectID, ferr := pathObjectID(vars["projectId"], "projectId")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}
	taskID, ferr := pathObjectID(vars["taskId"], "taskId")
	if ferr != nil {
		writeFieldErrors(w, []FieldError{*ferr})
		return
	}

	project, err := h.service.DetachTask(r.Context(), owner, projectID, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}
