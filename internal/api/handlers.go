package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"humanos.dev/coach/internal/core"
	"humanos.dev/coach/internal/store"
)

type APIHandler struct {
	coachService *core.CoachService
}

func NewAPIHandler(cs *core.CoachService) *APIHandler {
	return &APIHandler{coachService: cs}
}

// writeServiceError maps contract errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error, logContext string) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		log.Printf("%s: %v", logContext, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func userIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.coachService.CreateProfile(req.Name, req.Language)
	if err != nil {
		writeServiceError(w, err, "Error creating user")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.coachService.Profile(userID)
	if err != nil {
		writeServiceError(w, err, "Error getting user")
		return
	}
	json.NewEncoder(w).Encode(user)
}

type AddGoalRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

func (h *APIHandler) AddGoalHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req AddGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	goal, err := h.coachService.AddGoal(userID, req.Title, req.Details)
	if err != nil {
		writeServiceError(w, err, "Error adding goal")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(goal)
}

func (h *APIHandler) ListGoalsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	goals, err := h.coachService.Goals(userID)
	if err != nil {
		writeServiceError(w, err, "Error listing goals")
		return
	}
	if goals == nil {
		goals = []store.Goal{}
	}
	json.NewEncoder(w).Encode(goals)
}

type GeneratePlanRequest struct {
	GoalID string `json:"goal_id"`
}

func (h *APIHandler) GeneratePlanHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.GoalID == "" {
		http.Error(w, "goal_id is required", http.StatusBadRequest)
		return
	}

	msg, err := h.coachService.GenerateDailyPlan(userID, req.GoalID)
	if err != nil {
		writeServiceError(w, err, "Error generating plan")
		return
	}
	json.NewEncoder(w).Encode(msg)
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.coachService.Chat(userID, req.Message)
	if err != nil {
		writeServiceError(w, err, "Error handling chat message")
		return
	}
	json.NewEncoder(w).Encode(reply)
}

func (h *APIHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	// The store returns NotFound only for writes; verify the user here so
	// history for an unknown user is a 404, not an empty list.
	if _, err := h.coachService.Profile(userID); err != nil {
		writeServiceError(w, err, "Error getting chat history")
		return
	}

	messages, err := h.coachService.History(userID, limit)
	if err != nil {
		writeServiceError(w, err, "Error getting chat history")
		return
	}
	if messages == nil {
		messages = []store.ChatMessage{}
	}
	json.NewEncoder(w).Encode(messages)
}
