// Package core wires the store, prompt assembler and completion gateway
// into the coach operations the API exposes. Each completion-backed
// operation is a scoped sequential step per user: read inputs, call the
// gateway, write the result, with no interleaved writers for the same
// user's chat log.
package core

import (
	"log"
	"strings"
	"sync"

	"humanos.dev/coach/internal/gateway"
	"humanos.dev/coach/internal/prompt"
	"humanos.dev/coach/internal/store"
)

type CoachService struct {
	dbStore         *store.SQLiteStore
	completer       gateway.Completer
	maxOutputTokens int

	userLocks sync.Map // int64 -> *sync.Mutex
}

func NewCoachService(db *store.SQLiteStore, completer gateway.Completer, maxOutputTokens int) *CoachService {
	return &CoachService{
		dbStore:         db,
		completer:       completer,
		maxOutputTokens: maxOutputTokens,
	}
}

// lockUser serializes completion-backed operations for one user. Different
// users proceed independently.
func (s *CoachService) lockUser(userID int64) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *CoachService) CreateProfile(name, language string) (*store.User, error) {
	return s.dbStore.CreateUser(name, language)
}

func (s *CoachService) Profile(userID int64) (*store.User, error) {
	return s.dbStore.GetUser(userID)
}

func (s *CoachService) AddGoal(userID int64, title, details string) (*store.Goal, error) {
	return s.dbStore.AddGoal(userID, title, details)
}

func (s *CoachService) Goals(userID int64) ([]store.Goal, error) {
	return s.dbStore.ListGoals(userID)
}

func (s *CoachService) History(userID int64, limit int) ([]store.ChatMessage, error) {
	return s.dbStore.ListChats(userID, limit)
}

// GenerateDailyPlan builds the daily-plan prompt for one goal, completes
// it, and appends the result to the user's chat history as a single
// assistant turn.
func (s *CoachService) GenerateDailyPlan(userID int64, goalID string) (*store.ChatMessage, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.dbStore.GetUser(userID)
	if err != nil {
		return nil, err
	}
	goal, err := s.dbStore.GetGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	planPrompt := prompt.BuildDailyPlanPrompt(user.Name, user.Language, goal.Title, goal.Details)
	content := s.complete(userID, planPrompt)

	return s.dbStore.AppendChat(userID, store.RoleAssistant, content)
}

// Chat answers a free-text question with the user's goal list restated as
// memory, then appends the user turn followed by the assistant turn.
func (s *CoachService) Chat(userID int64, message string) (*store.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &store.ValidationError{Field: "message", Reason: "must not be empty"}
	}

	unlock := s.lockUser(userID)
	defer unlock()

	user, err := s.dbStore.GetUser(userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.dbStore.ListGoals(userID)
	if err != nil {
		return nil, err
	}

	memory := make([]string, 0, len(goals))
	for _, g := range goals {
		memory = append(memory, prompt.MemoryLine(g.Title, g.Details))
	}

	chatPrompt := prompt.BuildChatPrompt(user.Name, user.Language, memory, message)
	content := s.complete(userID, chatPrompt)

	if _, err := s.dbStore.AppendChat(userID, store.RoleUser, message); err != nil {
		return nil, err
	}
	return s.dbStore.AppendChat(userID, store.RoleAssistant, content)
}

// complete runs a single gateway call. A gateway failure becomes visible
// assistant text so the conversation keeps its continuity; it is never
// retried.
func (s *CoachService) complete(userID int64, p string) string {
	content, err := s.completer.Complete(p, s.maxOutputTokens)
	if err != nil {
		log.Printf("Completion failed for user %d: %v", userID, err)
		return "[AI error] " + err.Error()
	}
	return content
}
