package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humanos.dev/coach/internal/gateway"
	"humanos.dev/coach/internal/store"
)

// fakeCompleter records prompts and returns a canned reply or error.
type fakeCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(prompt string, maxOutputTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testService(t *testing.T, completer gateway.Completer) (*CoachService, *store.SQLiteStore) {
	t.Helper()
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCoachService(db, completer, 600), db
}

func TestGenerateDailyPlan_AppendsOneAssistantTurn(t *testing.T) {
	fake := &fakeCompleter{reply: "Morning: write Go."}
	svc, _ := testService(t, fake)

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)
	goal, err := svc.AddGoal(user.ID, "Learn Go", "stdlib first")
	require.NoError(t, err)

	msg, err := svc.GenerateDailyPlan(user.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, store.RoleAssistant, msg.Role)
	assert.Equal(t, "Morning: write Go.", msg.Content)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Learn Go")
	assert.Contains(t, fake.prompts[0], "stdlib first")
	assert.Contains(t, fake.prompts[0], "Asha")

	history, err := svc.History(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, store.RoleAssistant, history[0].Role)
}

func TestGenerateDailyPlan_UnknownGoal(t *testing.T) {
	fake := &fakeCompleter{reply: "unused"}
	svc, _ := testService(t, fake)

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)

	_, err = svc.GenerateDailyPlan(user.ID, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, fake.prompts, "no gateway call after a store failure")
}

func TestChat_AppendsUserThenAssistant(t *testing.T) {
	fake := &fakeCompleter{reply: "Do a mock interview."}
	svc, _ := testService(t, fake)

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)
	_, err = svc.AddGoal(user.ID, "Get job", "backend roles")
	require.NoError(t, err)

	reply, err := svc.Chat(user.ID, "How to prepare for interview today?")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAssistant, reply.Role)
	assert.Equal(t, "Do a mock interview.", reply.Content)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Goal: Get job - backend roles")
	assert.Contains(t, fake.prompts[0], "How to prepare for interview today?")

	history, err := svc.History(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Equal(t, "How to prepare for interview today?", history[0].Content)
	assert.Equal(t, store.RoleAssistant, history[1].Role)
}

func TestChat_NoGoalsOmitsMemory(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	svc, _ := testService(t, fake)

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)

	_, err = svc.Chat(user.ID, "hello")
	require.NoError(t, err)
	require.Len(t, fake.prompts, 1)
	assert.NotContains(t, fake.prompts[0], "User memory summary")
}

func TestChat_GatewayErrorStoredAsAssistantText(t *testing.T) {
	fake := &fakeCompleter{err: &gateway.Error{Kind: gateway.KindTimeout, Message: "deadline exceeded"}}
	svc, _ := testService(t, fake)

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)

	reply, err := svc.Chat(user.ID, "hello")
	require.NoError(t, err, "a gateway failure must not fail the request")
	assert.Contains(t, reply.Content, "[AI error]")
	assert.Contains(t, reply.Content, "timeout")

	history, err := svc.History(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Contains(t, history[1].Content, "[AI error]")
}

func TestChat_EmptyMessageFailsFast(t *testing.T) {
	fake := &fakeCompleter{reply: "unused"}
	svc, _ := testService(t, fake)

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)

	_, err = svc.Chat(user.ID, "   ")
	require.Error(t, err)
	assert.True(t, store.IsValidation(err))
	assert.Empty(t, fake.prompts)

	history, err := svc.History(user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history, "fail fast means no partial writes")
}

func TestChat_UnknownUser(t *testing.T) {
	fake := &fakeCompleter{reply: "unused"}
	svc, _ := testService(t, fake)

	_, err := svc.Chat(777, "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, fake.prompts)
}

func TestChat_OfflineFallbackFlow(t *testing.T) {
	svc, _ := testService(t, gateway.Offline{})

	user, err := svc.CreateProfile("Asha", "English")
	require.NoError(t, err)

	reply, err := svc.Chat(user.ID, "anything")
	require.NoError(t, err)
	assert.Equal(t, gateway.FallbackResponse, reply.Content)
}
