package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humanos.dev/coach/internal/core"
	"humanos.dev/coach/internal/gateway"
	"humanos.dev/coach/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := core.NewCoachService(db, gateway.Offline{}, 600)
	server := httptest.NewServer(NewRouter(NewAPIHandler(svc)))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	server := testServer(t)
	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetUser(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/users", CreateUserRequest{Name: "Asha", Language: "English"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[store.User](t, resp)
	assert.Equal(t, "Asha", created.Name)

	resp2, err := http.Get(fmt.Sprintf("%s/api/users/%d", server.URL, created.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	got := decode[store.User](t, resp2)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateUser_EmptyNameIs400(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/users", CreateUserRequest{Name: ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUser_Unknown404(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/users/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGoalAndPlanFlow(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/users", CreateUserRequest{Name: "Asha", Language: "English"})
	user := decode[store.User](t, resp)
	base := fmt.Sprintf("%s/api/users/%d", server.URL, user.ID)

	resp = postJSON(t, base+"/goals", AddGoalRequest{Title: "Learn Go", Details: "stdlib first"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	goal := decode[store.Goal](t, resp)

	resp2, err := http.Get(base + "/goals")
	require.NoError(t, err)
	goals := decode[[]store.Goal](t, resp2)
	require.Len(t, goals, 1)
	assert.Equal(t, "Learn Go", goals[0].Title)

	resp = postJSON(t, base+"/plans", GeneratePlanRequest{GoalID: goal.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[store.ChatMessage](t, resp)
	assert.Equal(t, store.RoleAssistant, plan.Role)
	assert.Equal(t, gateway.FallbackResponse, plan.Content)
}

func TestChatFlow(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/users", CreateUserRequest{Name: "Asha", Language: "English"})
	user := decode[store.User](t, resp)
	base := fmt.Sprintf("%s/api/users/%d", server.URL, user.ID)

	resp = postJSON(t, base+"/chat", ChatRequest{Message: "How do I start?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decode[store.ChatMessage](t, resp)
	assert.Equal(t, gateway.FallbackResponse, reply.Content)

	resp2, err := http.Get(base + "/chat")
	require.NoError(t, err)
	history := decode[[]store.ChatMessage](t, resp2)
	require.Len(t, history, 2)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Equal(t, store.RoleAssistant, history[1].Role)

	// Empty message is a validation problem.
	resp = postJSON(t, base+"/chat", ChatRequest{Message: " "})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatHistory_UnknownUser404(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/users/42/chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlan_UnknownGoal404(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/users", CreateUserRequest{Name: "Asha", Language: "English"})
	user := decode[store.User](t, resp)

	resp = postJSON(t, fmt.Sprintf("%s/api/users/%d/plans", server.URL, user.ID), GeneratePlanRequest{GoalID: "nope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
