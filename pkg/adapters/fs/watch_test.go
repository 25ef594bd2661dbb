package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notehub/pkg/adapters/fs"
	"github.com/aretw0/notehub/pkg/core"
)

func nextChange(t *testing.T, ch <-chan core.Change) core.Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	return core.Change{}
}

func TestStorage_Watch(t *testing.T) {
	s := setupStorage(t, fs.Config{WatchDebounce: 100 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := s.Watch(ctx, "notes_*")
	require.NoError(t, err)

	// Unrelated keys and foreign files are filtered out.
	require.NoError(t, s.Write(ctx, "user", "{}"))
	require.NoError(t, os.WriteFile(filepath.Join(s.Path, "notes.txt"), []byte("x"), 0644))

	// A burst on one key is coalesced.
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Write(ctx, "notes_u1", "[]"))
	}

	c := nextChange(t, changes)
	assert.Equal(t, "notes_u1", c.Key)
	assert.False(t, c.Removed)

	require.NoError(t, s.Remove(ctx, "notes_u1"))
	// Slow disks may split the burst above; skip until the removal shows up.
	for !c.Removed {
		c = nextChange(t, changes)
		assert.Equal(t, "notes_u1", c.Key)
	}
	assert.Equal(t, "remove notes_u1", c.String())

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond, "channel must close after cancel")
}

func TestStorage_Watch_InvalidPattern(t *testing.T) {
	s := setupStorage(t, fs.Config{})
	_, err := s.Watch(context.Background(), "[")
	assert.Error(t, err)
}
