package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/RichardoC/todo-agent/internal/models"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

var (
	ErrEmptyTodo = errors.New("todo text is required")
	ErrNotFound  = errors.New("todo not found")
)

type Database struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database, checks the connection and brings the
// schema up to date.
func Open(ctx context.Context, driver, dsn string) (*Database, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn must be provided", d.driver)
	}

	conn, err := sql.Open(d.open, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.driver, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	database := &Database{db: conn, dialect: d}
	if err := database.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return database, nil
}

func (db *Database) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, db.dialect.migrations)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(db.dialect.goose, db.db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

// GetAllTodos returns every record in storage order.
func (db *Database) GetAllTodos(ctx context.Context) ([]models.Todo, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT id, todo, created_at, updated_at FROM todos`)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (db *Database) CreateTodo(ctx context.Context, text string) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyTodo
	}

	if db.dialect.returning {
		query := db.dialect.rebind(`INSERT INTO todos (todo) VALUES (?) RETURNING id`)
		var id int64
		if err := db.db.QueryRowContext(ctx, query, text).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to create todo: %w", err)
		}
		return id, nil
	}

	result, err := db.db.ExecContext(ctx, `INSERT INTO todos (todo) VALUES (?)`, text)
	if err != nil {
		return 0, fmt.Errorf("failed to create todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read todo id: %w", err)
	}
	return id, nil
}

// SearchTodos matches query as a case-insensitive substring of the task text.
func (db *Database) SearchTodos(ctx context.Context, query string) (models.SearchResult, error) {
	stmt := db.dialect.rebind(`SELECT todo FROM todos WHERE ` + db.dialect.match)
	rows, err := db.db.QueryContext(ctx, stmt, containsPattern(query))
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("failed to search todos: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return models.SearchResult{}, fmt.Errorf("failed to scan todo: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return models.SearchResult{}, fmt.Errorf("failed to search todos: %w", err)
	}

	if len(texts) == 0 {
		return models.SearchResult{
			Message: fmt.Sprintf("No todos found matching %q", query),
		}, nil
	}
	return models.SearchResult{
		Message: fmt.Sprintf("Found %d todo(s) matching %q", len(texts), query),
		Todos:   texts,
	}, nil
}

// DeleteTodoByID is a no-op when id does not exist.
func (db *Database) DeleteTodoByID(ctx context.Context, id int64) error {
	query := db.dialect.rebind(`DELETE FROM todos WHERE id = ?`)
	if _, err := db.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete todo %d: %w", id, err)
	}
	return nil
}

func (db *Database) UpdateTodo(ctx context.Context, id int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyTodo
	}
	query := db.dialect.rebind(`UPDATE todos SET todo = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	result, err := db.db.ExecContext(ctx, query, text, id)
	if err != nil {
		return fmt.Errorf("failed to update todo %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update todo %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Database) GetTodo(ctx context.Context, id int64) (models.Todo, error) {
	query := db.dialect.rebind(`SELECT id, todo, created_at, updated_at FROM todos WHERE id = ?`)
	todo, err := scanTodo(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	return todo, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (models.Todo, error) {
	var (
		todo      models.Todo
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	if err := s.Scan(&todo.ID, &todo.Todo, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, err
		}
		return models.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	if createdAt.Valid {
		todo.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		todo.UpdatedAt = &t
	}
	return todo, nil
}
