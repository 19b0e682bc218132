package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/RichardoC/todo-agent/internal/agent"
	"github.com/RichardoC/todo-agent/internal/db"
	"go.uber.org/zap"
)

type Handler struct {
	db     *db.Database
	agent  *agent.Agent
	logger *zap.Logger
}

func NewHandler(database *db.Database, assistant *agent.Agent, logger *zap.Logger) *Handler {
	return &Handler{
		db:     database,
		agent:  assistant,
		logger: logger,
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/message", h.HandleMessage)
	mux.HandleFunc("/api/todos", h.Todos)
	mux.HandleFunc("/api/todos/search", h.SearchTodos)
	mux.HandleFunc("/api/todos/delete", h.DeleteTodo)
	mux.HandleFunc("/api/todos/update", h.UpdateTodo)
}

type MessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	Output string `json:"output"`
}

type TodoRequest struct {
	Todo string `json:"todo"`
}

type CreateTodoResponse struct {
	ID int64 `json:"id"`
}

func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	output, err := h.agent.Turn(r.Context(), req.Content)
	if err != nil {
		h.logger.Error("Failed to process message", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to process message: %v", err), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, MessageResponse{Output: output})
}

// Todos lists on GET and creates on POST.
func (h *Handler) Todos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		todos, err := h.db.GetAllTodos(r.Context())
		if err != nil {
			h.logger.Error("Failed to get todos",
				zap.Error(err),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		h.logger.Debug("Retrieved todos",
			zap.Int("count", len(todos)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))

		h.writeJSON(w, http.StatusOK, todos)

	case http.MethodPost:
		var req TodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		id, err := h.db.CreateTodo(r.Context(), req.Todo)
		if errors.Is(err, db.ErrEmptyTodo) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			h.logger.Error("Failed to create todo", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		h.writeJSON(w, http.StatusCreated, CreateTodoResponse{ID: id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) SearchTodos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	result, err := h.db.SearchTodos(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to search todos", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid todo ID", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteTodoByID(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete todo", zap.Error(err), zap.Int64("id", id))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid todo ID", http.StatusBadRequest)
		return
	}

	var req TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err = h.db.UpdateTodo(r.Context(), id, req.Todo)
	switch {
	case errors.Is(err, db.ErrEmptyTodo):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Todo not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("Failed to update todo", zap.Error(err), zap.Int64("id", id))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
