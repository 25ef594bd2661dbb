package notes_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notehub/internal/clocktest"
	"github.com/aretw0/notehub/pkg/adapters/memory"
	"github.com/aretw0/notehub/pkg/core"
	"github.com/aretw0/notehub/pkg/notes"
)

const (
	testUser = "user_1"
	delay    = 500 * time.Millisecond
)

var epoch = time.UnixMilli(1_700_000_000_000)

type fixture struct {
	clock   *clocktest.Clock
	storage *memory.Storage
	repo    *notes.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	clock := clocktest.New(epoch)
	storage := memory.New()
	repo := notes.NewRepository(notes.Config{Storage: storage, Clock: clock, Debounce: delay})
	repo.Load(context.Background(), testUser)
	t.Cleanup(repo.Close)
	return fixture{clock: clock, storage: storage, repo: repo}
}

func (f fixture) stored(t *testing.T) []core.Note {
	t.Helper()
	raw, ok, err := f.storage.Read(context.Background(), notes.StorageKey(testUser))
	require.NoError(t, err)
	require.True(t, ok, "nothing stored yet")
	decoded, err := notes.Decode(raw)
	require.NoError(t, err)
	return decoded
}

func ids(ns []core.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestRepository_NoUser(t *testing.T) {
	clock := clocktest.New(epoch)
	storage := memory.New()
	repo := notes.NewRepository(notes.Config{Storage: storage, Clock: clock})

	_, ok := repo.Add("title", "body")
	assert.False(t, ok)
	assert.False(t, repo.Update("x", core.Patch{Title: core.Ptr("t")}))
	assert.False(t, repo.Delete("x"))
	assert.False(t, repo.TogglePin("x"))
	assert.False(t, repo.SetColor("x", core.ColorBlue))
	assert.Empty(t, repo.Notes())
	assert.Empty(t, repo.UserID())
	require.NoError(t, repo.Flush(context.Background()))

	clock.Advance(time.Hour)
	assert.Equal(t, 0, storage.Writes())
	assert.Equal(t, core.StatusSaved, repo.Status())
}

func TestRepository_Add_Defaults(t *testing.T) {
	f := setup(t)

	first, ok := f.repo.Add("Title", "Body")
	require.True(t, ok)
	f.clock.Advance(time.Millisecond)
	second, ok := f.repo.Add("Work", "", "work")
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(first.ID, "note_"))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Title", first.Title)
	assert.Equal(t, "Body", first.Content)
	assert.Equal(t, core.ColorYellow, first.Color)
	assert.Equal(t, core.DefaultCategory, first.Category)
	assert.Equal(t, "work", second.Category)
	assert.False(t, first.IsPinned)
	assert.Equal(t, epoch, first.CreatedAt)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	assert.Equal(t, []string{second.ID, first.ID}, ids(f.repo.Notes()), "newest first")
}

func TestRepository_Add_BlankCategoryFallsBack(t *testing.T) {
	f := setup(t)
	n, _ := f.repo.Add("t", "c", "  ")
	assert.Equal(t, core.DefaultCategory, n.Category)
}

func TestRepository_Update(t *testing.T) {
	f := setup(t)
	n, _ := f.repo.Add("old", "body")

	f.clock.Advance(time.Minute)
	ok := f.repo.Update(n.ID, core.Patch{
		Title:      core.Ptr("new"),
		Category:   core.Ptr("ideas"),
		PaperStyle: core.Ptr("grid"),
	})
	require.True(t, ok)

	got, ok := f.repo.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "body", got.Content, "untouched fields survive")
	assert.Equal(t, "ideas", got.Category)
	assert.Equal(t, "grid", got.PaperStyle)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.Equal(t, epoch.Add(time.Minute), got.UpdatedAt)
}

func TestRepository_Update_BlankCategoryFallsBack(t *testing.T) {
	f := setup(t)
	n, _ := f.repo.Add("t", "c", "work")

	require.True(t, f.repo.Update(n.ID, core.Patch{Category: core.Ptr("")}))
	got, _ := f.repo.Get(n.ID)
	assert.Equal(t, core.DefaultCategory, got.Category)

	require.True(t, f.repo.Update(n.ID, core.Patch{Category: core.Ptr("  ideas ")}))
	got, _ = f.repo.Get(n.ID)
	assert.Equal(t, "ideas", got.Category)
}

func TestRepository_Update_NotFound(t *testing.T) {
	f := setup(t)

	assert.False(t, f.repo.Update("missing", core.Patch{Title: core.Ptr("x")}))
	assert.False(t, f.repo.Delete("missing"))
	assert.False(t, f.repo.TogglePin("missing"))

	assert.Equal(t, core.StatusSaved, f.repo.Status())
	assert.Equal(t, 0, f.clock.Pending(), "no save scheduled for a no-op")
}

func TestRepository_TogglePin_Idempotent(t *testing.T) {
	f := setup(t)
	n, _ := f.repo.Add("t", "c")

	f.clock.Advance(time.Second)
	require.True(t, f.repo.TogglePin(n.ID))
	pinned, _ := f.repo.Get(n.ID)
	assert.True(t, pinned.IsPinned)
	assert.True(t, pinned.UpdatedAt.After(n.UpdatedAt))

	require.True(t, f.repo.TogglePin(n.ID))
	back, _ := f.repo.Get(n.ID)
	assert.False(t, back.IsPinned)
}

func TestRepository_SetColor(t *testing.T) {
	f := setup(t)
	n, _ := f.repo.Add("t", "c")

	require.True(t, f.repo.SetColor(n.ID, core.ColorLavender))
	got, _ := f.repo.Get(n.ID)
	assert.Equal(t, core.ColorLavender, got.Color)

	assert.False(t, f.repo.SetColor(n.ID, core.Color("crimson")))
	got, _ = f.repo.Get(n.ID)
	assert.Equal(t, core.ColorLavender, got.Color)

	// An unknown color inside a broader patch only drops that field.
	require.True(t, f.repo.Update(n.ID, core.Patch{Color: core.Ptr(core.Color("crimson")), Title: core.Ptr("kept")}))
	got, _ = f.repo.Get(n.ID)
	assert.Equal(t, core.ColorLavender, got.Color)
	assert.Equal(t, "kept", got.Title)
}

func TestRepository_Debounce_Coalesces(t *testing.T) {
	f := setup(t)
	n, _ := f.repo.Add("draft", "")

	for i := 0; i < 20; i++ {
		f.clock.Advance(delay - time.Millisecond)
		f.repo.Update(n.ID, core.Patch{Content: core.Ptr(fmt.Sprintf("typing %d", i))})
		assert.Equal(t, core.StatusSaving, f.repo.Status())
	}
	assert.Equal(t, 0, f.storage.Writes(), "no write while typing")

	f.clock.Advance(delay - time.Millisecond)
	assert.Equal(t, 0, f.storage.Writes())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, f.storage.Writes())
	assert.Equal(t, core.StatusSaved, f.repo.Status())
	assert.Equal(t, "typing 19", f.stored(t)[0].Content)
}

func TestRepository_AddThenDeleteBeforeFire(t *testing.T) {
	f := setup(t)

	n, _ := f.repo.Add("Title", "Body")
	require.True(t, f.repo.Delete(n.ID))
	assert.Empty(t, f.repo.Notes())

	f.clock.Advance(delay)
	assert.Equal(t, 1, f.storage.Writes())
	assert.Empty(t, f.stored(t), "intermediate state is never written")
}

func TestRepository_WriteFailure(t *testing.T) {
	f := setup(t)
	f.storage.SetWriteFault(func(key, value string) error { return errors.New("quota exceeded") })

	n, _ := f.repo.Add("t", "c")
	assert.Equal(t, core.StatusSaving, f.repo.Status())

	f.clock.Advance(delay)
	assert.Equal(t, core.StatusError, f.repo.Status())
	assert.Len(t, f.repo.Notes(), 1, "memory stays authoritative")

	state := f.repo.State().(notes.RepositoryState)
	assert.Contains(t, state.LastError, "quota exceeded")

	// No automatic retry.
	f.clock.Advance(time.Hour)
	assert.Equal(t, 1, f.storage.Writes())

	f.storage.SetWriteFault(nil)
	f.repo.TogglePin(n.ID)
	assert.Equal(t, core.StatusSaving, f.repo.Status())

	f.clock.Advance(delay)
	assert.Equal(t, core.StatusSaved, f.repo.Status())
	assert.Equal(t, 2, f.storage.Writes())
	assert.True(t, f.stored(t)[0].IsPinned)
}

func TestRepository_RoundTrip(t *testing.T) {
	f := setup(t)
	a, _ := f.repo.Add("a", "alpha", "work")
	f.clock.Advance(time.Second)
	b, _ := f.repo.Add("b", "beta")
	f.repo.TogglePin(a.ID)
	f.repo.SetColor(b.ID, core.ColorBlue)
	f.repo.Update(b.ID, core.Patch{PinStyle: core.Ptr("silver")})
	require.NoError(t, f.repo.Flush(context.Background()))

	reloaded := notes.NewRepository(notes.Config{Storage: f.storage, Clock: f.clock})
	reloaded.Load(context.Background(), testUser)

	assert.Equal(t, f.repo.Notes(), reloaded.Notes())
	assert.Equal(t, core.StatusSaved, reloaded.Status())
}

func TestRepository_Load_Corrupt(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	require.NoError(t, storage.Write(ctx, notes.StorageKey(testUser), "{corrupt"))

	clock := clocktest.New(epoch)
	repo := notes.NewRepository(notes.Config{Storage: storage, Clock: clock})
	repo.Load(ctx, testUser)

	assert.Empty(t, repo.Notes())
	assert.Equal(t, testUser, repo.UserID())

	_, ok := repo.Add("fresh", "start")
	require.True(t, ok, "a corrupt cache never blocks new notes")
	clock.Advance(notes.DefaultDebounce)
	assert.Equal(t, core.StatusSaved, repo.Status())
}

func TestRepository_Load_KeepsNotesBesideDamagedEntry(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	raw := `[{"title":"lost its id"},{"id":"note_1","title":"intact","content":"","color":"mint","category":"home","isPinned":true,"createdAt":1,"updatedAt":2}]`
	require.NoError(t, storage.Write(ctx, notes.StorageKey(testUser), raw))

	repo := notes.NewRepository(notes.Config{Storage: storage, Clock: clocktest.New(epoch)})
	repo.Load(ctx, testUser)

	got := repo.Notes()
	require.Len(t, got, 1)
	assert.Equal(t, "intact", got[0].Title)
	assert.True(t, got[0].IsPinned)
}

func TestRepository_Load_ScopedPerUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.repo.Add("mine", "")
	require.NoError(t, f.repo.Flush(ctx))

	f.repo.Load(ctx, "user_2")
	assert.Empty(t, f.repo.Notes())
	f.repo.Add("theirs", "")

	// Switching back before the timer fires drops user_2's pending save.
	f.repo.Load(ctx, testUser)
	f.clock.Advance(time.Hour)

	_, ok, err := f.storage.Read(ctx, notes.StorageKey("user_2"))
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, f.repo.Notes(), 1)
	assert.Equal(t, "mine", f.repo.Notes()[0].Title)

	f.repo.Load(ctx, "")
	assert.Empty(t, f.repo.UserID())
	assert.Empty(t, f.repo.Notes())
}

func TestRepository_Close_CancelsPendingSave(t *testing.T) {
	f := setup(t)
	f.repo.Add("t", "c")

	f.repo.Close()
	assert.Equal(t, 0, f.clock.Pending())

	f.repo.Add("after close", "")
	f.clock.Advance(time.Hour)
	assert.Equal(t, 0, f.storage.Writes(), "teardown never forces a write")
	assert.Len(t, f.repo.Notes(), 2)
}

func TestRepository_Close_LeavesStatusAlone(t *testing.T) {
	f := setup(t)
	f.repo.Add("t", "c")
	f.clock.Advance(delay)
	require.Equal(t, core.StatusSaved, f.repo.Status())

	f.repo.Close()
	f.repo.Add("after close", "")
	f.clock.Advance(time.Hour)

	assert.Equal(t, core.StatusSaved, f.repo.Status(), "no save will ever run, so none is reported")
	assert.Equal(t, 1, f.storage.Writes())
	require.NoError(t, f.repo.Flush(context.Background()))
	assert.Equal(t, 1, f.storage.Writes(), "a closed repository never writes")
}

func TestRepository_Flush(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.NoError(t, f.repo.Flush(ctx))
	assert.Equal(t, 0, f.storage.Writes(), "nothing pending, nothing written")

	f.repo.Add("t", "c")
	require.NoError(t, f.repo.Flush(ctx))
	assert.Equal(t, 1, f.storage.Writes())
	assert.Equal(t, core.StatusSaved, f.repo.Status())

	f.clock.Advance(time.Hour)
	assert.Equal(t, 1, f.storage.Writes(), "the cancelled timer must not write again")

	f.storage.SetWriteFault(func(key, value string) error { return errors.New("disk full") })
	f.repo.Add("t2", "")
	err := f.repo.Flush(ctx)
	assert.ErrorIs(t, err, core.ErrStorageFailure)
	assert.Equal(t, core.StatusError, f.repo.Status())
}

// The model below mirrors the operations on a plain slice; the repository
// must agree with it regardless of when the debounce fires.
func TestRepository_MatchesModel(t *testing.T) {
	f := setup(t)
	var model []core.Note

	find := func(id string) int {
		for i, n := range model {
			if n.ID == id {
				return i
			}
		}
		return -1
	}

	for step := 0; step < 60; step++ {
		switch step % 5 {
		case 0, 1:
			n, _ := f.repo.Add(fmt.Sprintf("note %d", step), "", []string{"work", "home"}[step%2])
			model = append([]core.Note{n}, model...)
		case 2:
			id := model[len(model)/2].ID
			f.repo.Update(id, core.Patch{Content: core.Ptr(fmt.Sprintf("edit %d", step))})
			model[find(id)].Content = fmt.Sprintf("edit %d", step)
		case 3:
			id := model[0].ID
			f.repo.TogglePin(id)
			model[find(id)].IsPinned = !model[find(id)].IsPinned
		case 4:
			id := model[len(model)-1].ID
			f.repo.Delete(id)
			model = append(model[:find(id)], model[find(id)+1:]...)
		}
		f.clock.Advance(time.Duration(step%7) * 100 * time.Millisecond)
	}
	f.clock.Advance(delay)

	got := f.repo.Notes()
	require.Equal(t, ids(model), ids(got))
	for i := range model {
		assert.Equal(t, model[i].Content, got[i].Content)
		assert.Equal(t, model[i].IsPinned, got[i].IsPinned)
	}
	assert.Equal(t, ids(got), ids(f.stored(t)))
}

func TestRepository_ConcurrentMutations(t *testing.T) {
	storage := memory.New()
	repo := notes.NewRepository(notes.Config{Storage: storage, Debounce: 5 * time.Millisecond})
	repo.Load(context.Background(), testUser)
	defer repo.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				n, _ := repo.Add(fmt.Sprintf("w%d-%d", w, i), "")
				repo.TogglePin(n.ID)
				_ = repo.Status()
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, repo.Notes(), 200)
	assert.Eventually(t, func() bool { return repo.Status() == core.StatusSaved }, 2*time.Second, 5*time.Millisecond)

	raw, ok, err := storage.Read(context.Background(), notes.StorageKey(testUser))
	require.NoError(t, err)
	require.True(t, ok)
	stored, err := notes.Decode(raw)
	require.NoError(t, err)
	assert.Len(t, stored, 200)
}

func TestRepository_State(t *testing.T) {
	f := setup(t)
	f.repo.Add("t", "c")

	state := f.repo.State().(notes.RepositoryState)
	assert.Equal(t, testUser, state.UserID)
	assert.Equal(t, 1, state.NoteCount)
	assert.Equal(t, "saving", state.Status)
	assert.True(t, state.SavePending)
	assert.Equal(t, int64(500), state.DebounceMs)
	assert.Equal(t, "notes", f.repo.ComponentType())

	f.clock.Advance(delay)
	state = f.repo.State().(notes.RepositoryState)
	assert.False(t, state.SavePending)
	assert.Equal(t, 1, state.Writes)
}

func TestRepository_Flush_WaitsForWriteInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	storage := memory.New(memory.WithWriteFault(func(key, value string) error {
		blocked := false
		once.Do(func() { blocked = true })
		if blocked {
			close(started)
			<-release
		}
		return nil
	}))

	repo := notes.NewRepository(notes.Config{Storage: storage, Debounce: time.Millisecond})
	repo.Load(context.Background(), testUser)
	defer repo.Close()

	repo.Add("typed fast", "")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced write never started")
	}

	flushed := make(chan error, 1)
	go func() { flushed <- repo.Flush(context.Background()) }()

	select {
	case err := <-flushed:
		t.Fatalf("Flush returned (%v) while the write was still in flight", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-flushed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Flush never returned")
	}

	assert.Equal(t, core.StatusSaved, repo.Status())
	raw, ok, err := storage.Read(context.Background(), notes.StorageKey(testUser))
	require.NoError(t, err)
	require.True(t, ok, "durable once Flush returns")
	stored, err := notes.Decode(raw)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "typed fast", stored[0].Title)
}

func TestRepository_Flush_RetriesAfterFailedSave(t *testing.T) {
	f := setup(t)
	f.storage.SetWriteFault(func(key, value string) error { return errors.New("disk full") })
	f.repo.Add("t", "c")
	f.clock.Advance(delay)
	require.Equal(t, core.StatusError, f.repo.Status())

	err := f.repo.Flush(context.Background())
	assert.ErrorIs(t, err, core.ErrStorageFailure, "an unsaved collection is never reported as flushed")

	f.storage.SetWriteFault(nil)
	require.NoError(t, f.repo.Flush(context.Background()))
	assert.Equal(t, core.StatusSaved, f.repo.Status())
	assert.Len(t, f.stored(t), 1)
}
