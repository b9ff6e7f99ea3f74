package store

import "time"

// Chat roles. These are the only values accepted by AppendChat.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

type Goal struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
