package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"postboard/app/client/mock"
	"postboard/app/page"
	"postboard/app/repositories"
	"postboard/app/toggle"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryStores(string) (toggle.StateStore, error) {
	return repositories.NewMemoryToggleRepository(), nil
}

func TestSessionService_Get(t *testing.T) {
	res := mock.Seeded()
	s := NewSessionService(res, memoryStores, page.Options{}, time.Minute, 0)
	ctx := context.Background()

	first, created, err := s.Get(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)
	_, err = uuid.FromString(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Calls("FetchUsers"), "new pages fill their picker")

	again, created, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created, err := s.Get(ctx, "unknown-id")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, 2, s.Len())
}

func TestSessionService_Limit(t *testing.T) {
	s := NewSessionService(mock.Seeded(), memoryStores, page.Options{}, time.Minute, 1)

	_, _, err := s.Get(context.Background(), "")
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestSessionService_LimitUnderConcurrentCreation(t *testing.T) {
	res := mock.Seeded()
	release := make(chan struct{})
	res.BeforeUsers = func() { <-release }
	s := NewSessionService(res, memoryStores, page.Options{}, time.Minute, 1)

	const visitors = 10
	errs := make(chan error, visitors)
	for i := 0; i < visitors; i++ {
		go func() {
			_, _, err := s.Get(context.Background(), "")
			errs <- err
		}()
	}

	for i := 0; i < visitors-1; i++ {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrSessionLimit)
		case <-time.After(5 * time.Second):
			close(release)
			t.Fatal("visitors beyond the cap were not turned away while the first session was created")
		}
	}
	close(release)
	require.NoError(t, <-errs)
	assert.Equal(t, 1, s.Len())
}

func TestSessionService_FailedCreateFreesSlot(t *testing.T) {
	fail := true
	stores := func(id string) (toggle.StateStore, error) {
		if fail {
			return nil, errors.New("store unavailable")
		}
		return memoryStores(id)
	}
	s := NewSessionService(mock.Seeded(), stores, page.Options{}, time.Minute, 1)

	_, _, err := s.Get(context.Background(), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionLimit)

	fail = false
	_, created, err := s.Get(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestSessionService_Sweep(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stores := func(id string) (toggle.StateStore, error) {
		return repositories.NewBadgerToggleRepository(db, id)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionService(mock.Seeded(), stores, page.Options{}, 10*time.Minute, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	stale, _, err := s.Get(ctx, "")
	require.NoError(t, err)
	stale.Page.Select(ctx, "1")
	_, err = stale.Page.Click(5)
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	fresh, _, err := s.Get(ctx, "")
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, created, err := s.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.False(t, created)

	ids, err := stale.store.VisibleIDs()
	require.NoError(t, err)
	assert.Empty(t, ids, "swept sessions release their toggle state")
}
