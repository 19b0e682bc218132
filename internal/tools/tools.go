// Package tools is the closed set of operations the model may ask for.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/RichardoC/todo-agent/internal/db"
	"github.com/RichardoC/todo-agent/internal/models"
)

var ErrInvalidInput = errors.New("invalid tool input")

type Kind int

const (
	GetAllTodos Kind = iota + 1
	CreateTodo
	SearchTodos
	DeleteTodoByID
)

// Kinds lists every tool in the order they are described to the model.
var Kinds = []Kind{GetAllTodos, CreateTodo, SearchTodos, DeleteTodoByID}

func (k Kind) String() string {
	switch k {
	case GetAllTodos:
		return "getAllTodos"
	case CreateTodo:
		return "createTodo"
	case SearchTodos:
		return "searchTodos"
	case DeleteTodoByID:
		return "deleteTodoById"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == strings.TrimSpace(name) {
			return k, true
		}
	}
	return 0, false
}

// Names returns the wire names of all tools.
func Names() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = k.String()
	}
	return names
}

type Store interface {
	GetAllTodos(ctx context.Context) ([]models.Todo, error)
	CreateTodo(ctx context.Context, text string) (int64, error)
	SearchTodos(ctx context.Context, query string) (models.SearchResult, error)
	DeleteTodoByID(ctx context.Context, id int64) error
}

type Dispatcher struct {
	store Store
}

func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Invoke runs the tool and returns one of []models.Todo, int64,
// models.SearchResult or models.DeleteResult.
func (d *Dispatcher) Invoke(ctx context.Context, kind Kind, input json.RawMessage) (any, error) {
	switch kind {
	case GetAllTodos:
		return d.store.GetAllTodos(ctx)

	case CreateTodo:
		text, err := textInput(input)
		if err != nil {
			return nil, err
		}
		id, err := d.store.CreateTodo(ctx, text)
		if errors.Is(err, db.ErrEmptyTodo) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return id, err

	case SearchTodos:
		query, err := textInput(input)
		if err != nil {
			return nil, err
		}
		return d.store.SearchTodos(ctx, query)

	case DeleteTodoByID:
		id, err := idInput(input)
		if err != nil {
			return nil, err
		}
		if err := d.store.DeleteTodoByID(ctx, id); err != nil {
			return nil, err
		}
		return models.DeleteResult{ID: id, Status: "ok"}, nil
	}
	return nil, fmt.Errorf("unknown tool kind: %s", kind)
}

// textInput accepts a JSON string, or any other scalar rendered as text.
func textInput(input json.RawMessage) (string, error) {
	raw := bytes.TrimSpace(input)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	switch raw[0] {
	case '{', '[':
		return "", fmt.Errorf("%w: expected text, got %s", ErrInvalidInput, raw)
	}
	return string(raw), nil
}

// idInput accepts a JSON number or a numeric string.
func idInput(input json.RawMessage) (int64, error) {
	raw := bytes.TrimSpace(input)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(strings.TrimSpace(s))
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expected a todo id, got %s", ErrInvalidInput, input)
	}
	return id, nil
}
