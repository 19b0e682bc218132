package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/RichardoC/todo-agent/internal/agent"
	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/db"
	"github.com/RichardoC/todo-agent/internal/history"
	"github.com/RichardoC/todo-agent/internal/models"
	"github.com/RichardoC/todo-agent/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type cannedModel struct {
	reply string
}

func (m cannedModel) Complete(context.Context, []models.Message) (string, error) {
	return m.reply, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *db.Database) {
	t.Helper()
	database, err := db.Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	logger := zaptest.NewLogger(t)
	assistant := agent.New(
		cannedModel{reply: `{"type":"output","output":"Hello from the assistant"}`},
		tools.NewDispatcher(database),
		history.NewMemory(10, 0, nil),
		logger,
		config.AgentConfig{MaxSteps: 3},
	)

	mux := http.NewServeMux()
	NewHandler(database, assistant, logger).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, database
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTodosCreateAndList(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/todos", `{"todo":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created CreateTodoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Positive(t, created.ID)

	resp = do(t, http.MethodGet, srv.URL+"/api/todos", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var todos []models.Todo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&todos))
	require.Len(t, todos, 1)
	assert.Equal(t, created.ID, todos[0].ID)
	assert.Equal(t, "Buy milk", todos[0].Todo)
}

func TestTodosRejectsBlank(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/todos", `{"todo":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPatch, srv.URL+"/api/todos", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSearchTodos(t *testing.T) {
	srv, database := newTestServer(t)
	ctx := context.Background()
	_, err := database.CreateTodo(ctx, "Buy milk")
	require.NoError(t, err)
	_, err = database.CreateTodo(ctx, "Buy eggs")
	require.NoError(t, err)

	resp := do(t, http.MethodGet, srv.URL+"/api/todos/search?q=milk", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"Buy milk"}, result.Todos)

	resp = do(t, http.MethodGet, srv.URL+"/api/todos/search", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteAndUpdate(t *testing.T) {
	srv, database := newTestServer(t)
	ctx := context.Background()
	id, err := database.CreateTodo(ctx, "Buy milk")
	require.NoError(t, err)
	idStr := strconv.FormatInt(id, 10)

	resp := do(t, http.MethodPut, srv.URL+"/api/todos/update?id="+idStr, `{"todo":"Buy oat milk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	todo, err := database.GetTodo(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", todo.Todo)

	resp = do(t, http.MethodPut, srv.URL+"/api/todos/update?id=999", `{"todo":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/todos/delete?id="+idStr, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/api/todos/delete?id=999", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodDelete, srv.URL+"/api/todos/delete?id=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	todos, err := database.GetAllTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestHandleMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/message", `{"content":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg MessageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, "Hello from the assistant", msg.Output)

	resp = do(t, http.MethodPost, srv.URL+"/api/message", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, http.MethodGet, srv.URL+"/api/message", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
