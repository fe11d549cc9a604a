package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillerhq/tiller/pkg/adapters/file"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_SaveWritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	state := domain.NewState("sess-1")
	state.Status = domain.StatusSuspended
	state.PendingQuestion = "Which company?"
	require.NoError(t, store.Save(ctx, "sess-1", state))

	data, err := os.ReadFile(filepath.Join(dir, "sess-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pending_question": "Which company?"`)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", domain.NewState("sess-1")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, sessions)
}
