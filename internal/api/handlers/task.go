package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/api/middleware"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/repository"
	"github.com/sayantan/task-manager-api/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.Create(r.Context(), user.ID, service.CreateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Msg, http.StatusBadRequest)
			return
		}
		log.Printf("ERROR [task.Create] failed to create task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

// List supports ?completed=true|false, ?limit, ?skip, and ?sortBy=field:dir.
// Unparseable refinements are ignored rather than rejected.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	filter := parseTaskFilter(r)

	tasks, err := h.taskService.List(r.Context(), user.ID, filter)
	if err != nil {
		log.Printf("ERROR [task.List] failed to list tasks: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [task.Get] failed to get task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := checkAllowedFields(body, "description", "completed"); err != nil {
		http.Error(w, "Invalid updates!", http.StatusBadRequest)
		return
	}

	var req UpdateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.Update(r.Context(), taskID, user.ID, service.UpdateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			http.Error(w, "Not found", http.StatusNotFound)
		case errors.As(err, &vErr):
			http.Error(w, vErr.Msg, http.StatusBadRequest)
		default:
			log.Printf("ERROR [task.Update] failed to update task: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Please authenticate", http.StatusUnauthorized)
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	task, err := h.taskService.Delete(r.Context(), taskID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [task.Delete] failed to delete task: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func parseTaskFilter(r *http.Request) repository.TaskFilter {
	filter := repository.TaskFilter{}

	if completed := r.URL.Query().Get("completed"); completed != "" {
		value := completed == "true"
		filter.Completed = &value
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}
	if skip, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil {
		filter.Skip = skip
	}
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		parts := strings.SplitN(sortBy, ":", 2)
		filter.SortField = parts[0]
		filter.SortDesc = len(parts) == 2 && parts[1] == "desc"
	}

	return filter
}
