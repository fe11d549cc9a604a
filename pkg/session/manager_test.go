package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillerhq/tiller/pkg/adapters/memory"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/session"
)

func TestManager_LoadSuspended(t *testing.T) {
	m := session.NewManager(memory.NewStore())
	ctx := context.Background()

	suspended := domain.NewState("sess-1")
	suspended.Status = domain.StatusSuspended
	suspended.PendingQuestion = "Which company?"
	require.NoError(t, m.Save(ctx, "sess-1", suspended))

	state, err := m.LoadSuspended(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Which company?", state.PendingQuestion)

	// A completed session cannot be resumed.
	completed := domain.NewState("sess-2")
	completed.Status = domain.StatusCompleted
	require.NoError(t, m.Save(ctx, "sess-2", completed))

	_, err = m.LoadSuspended(ctx, "sess-2")
	assert.ErrorIs(t, err, domain.ErrNotSuspended)

	_, err = m.LoadSuspended(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ConcurrentAccessIsSerialized(t *testing.T) {
	m := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "sess-1", domain.NewState("sess-1")))

	// Hammer the same session from many goroutines; WithLock must serialize
	// the read-modify-write cycles so no update is lost.
	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(ctx, "sess-1", func(ctx context.Context) error {
				state, err := m.Store().Load(ctx, "sess-1")
				if err != nil {
					return err
				}
				state.Attempts++
				return m.Store().Save(ctx, "sess-1", state)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := m.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, workers, state.Attempts)
}

func TestManager_DeleteAndList(t *testing.T) {
	m := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "a", domain.NewState("a")))
	require.NoError(t, m.Save(ctx, "b", domain.NewState("b")))

	sessions, err := m.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, sessions)

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
