package models

import "time"

type Todo struct {
	ID        int64      `json:"id"`
	Todo      string     `json:"todo"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SearchResult drops ids on purpose: the model only sees task texts.
type SearchResult struct {
	Message string   `json:"message"`
	Todos   []string `json:"todos,omitempty"`
}

type DeleteResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"` // user, assistant, or system
	Content string `json:"content"`
}
