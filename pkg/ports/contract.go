package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillerhq/tiller/pkg/domain"
)

// RunStateStoreContract runs a suite of tests verifying that a StateStore
// implementation adheres to the interface contract. Every adapter test calls
// this so all backends behave identically.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Status = domain.StatusSuspended
		state.PendingQuestion = "Which company are you asking about?"
		state.History = append(state.History, domain.Turn{Role: domain.RoleUser, Text: "Tell me about the company"})
		state.Trace = append(state.Trace, domain.StepClarifier)

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Status, loaded.Status)
		assert.Equal(t, state.PendingQuestion, loaded.PendingQuestion)
		assert.Equal(t, state.History, loaded.History)
		assert.Equal(t, state.Trace, loaded.Trace)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.SubjectEntity = "Infosys"
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the saved pointer must not affect the checkpoint.
		state.SubjectEntity = "TCS"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Infosys", loaded.SubjectEntity)

		// Mutating a loaded copy must not affect the checkpoint either.
		loaded.SubjectEntity = "Wipro"
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Infosys", again.SubjectEntity)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
