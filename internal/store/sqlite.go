package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultChatLimit bounds ListChats when the caller passes limit <= 0.
const DefaultChatLimit = 200

// SQLiteStore owns the users, goals and chats tables. All writes are
// serialized through a single mutex so interleaved writers cannot corrupt
// the backing file; every mutating call commits before it returns.
type SQLiteStore struct {
	db *sql.DB

	mu sync.Mutex // serializes writes
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	dsn := dataSourceName
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        language TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS goals (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        details TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS chats (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(name, language string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if language == "" {
		language = "English"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.Exec("INSERT INTO users (name, language, created_at) VALUES (?, ?, ?)", name, language, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return &User{ID: id, Name: name, Language: language, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetUser(userID int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, name, language, created_at FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Name, &user.Language, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) userExists(userID int64) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM users WHERE id = ?", userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return true, nil
}

// Goal methods

func (s *SQLiteStore) AddGoal(userID int64, title, details string) (*Goal, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	exists, err := s.userExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goal := &Goal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	stmt, err := s.db.Prepare("INSERT INTO goals (id, user_id, title, details, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare goal insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(goal.ID, goal.UserID, goal.Title, goal.Details, goal.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to execute goal insert: %w", err)
	}
	return goal, nil
}

func (s *SQLiteStore) ListGoals(userID int64) ([]Goal, error) {
	rows, err := s.db.Query("SELECT id, user_id, title, details, created_at FROM goals WHERE user_id = ? ORDER BY rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var goal Goal
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Title, &goal.Details, &goal.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal row: %w", err)
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (s *SQLiteStore) GetGoal(userID int64, goalID string) (*Goal, error) {
	var goal Goal
	err := s.db.QueryRow("SELECT id, user_id, title, details, created_at FROM goals WHERE id = ? AND user_id = ?", goalID, userID).
		Scan(&goal.ID, &goal.UserID, &goal.Title, &goal.Details, &goal.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return &goal, nil
}

// Chat methods

func (s *SQLiteStore) AppendChat(userID int64, role, content string) (*ChatMessage, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("must be %q or %q", RoleUser, RoleAssistant)}
	}
	exists, err := s.userExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	stmt, err := s.db.Prepare("INSERT INTO chats (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare chat insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(msg.ID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to execute chat insert: %w", err)
	}
	return msg, nil
}

// ListChats returns the most recent limit messages for a user in
// chronological order (oldest first). Rows are stored newest-first, so the
// bounded read is reversed before returning.
func (s *SQLiteStore) ListChats(userID int64, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	rows, err := s.db.Query("SELECT id, user_id, role, content, created_at FROM chats WHERE user_id = ? ORDER BY rowid DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse newest-first storage order into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
