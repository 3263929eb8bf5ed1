package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	store := NewMemoryStore(fc)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	fc.Advance(time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreInvalidateTags(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "list|p1", []byte("a"), 0, "/dashboard/invoices"))
	require.NoError(t, store.Set(ctx, "cards", []byte("b"), 0, "/dashboard/invoices", "/dashboard"))
	require.NoError(t, store.Set(ctx, "customers", []byte("c"), 0, "/dashboard/customers"))

	require.NoError(t, NewStoreRevalidator(store).Revalidate(ctx, "/dashboard/invoices"))

	_, ok, _ := store.Get(ctx, "list|p1")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "cards")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "customers")
	assert.True(t, ok)
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	store := NewMemoryStore(nil)
	_, _, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, store.Set(context.Background(), "", nil, 0), ErrEmptyKey)
}

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestRememberLoadsOnceUntilInvalidated(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (page, error) {
		calls++
		return page{Items: []string{"x"}, Total: calls}, nil
	}
	tags := []string{"/dashboard/invoices"}

	first, err := Remember(ctx, store, nil, "k", time.Minute, tags, load)
	require.NoError(t, err)
	second, err := Remember(ctx, store, nil, "k", time.Minute, tags, load)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, store.InvalidateTags(ctx, "/dashboard/invoices"))
	third, err := Remember(ctx, store, nil, "k", time.Minute, tags, load)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Total)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	store := NewMemoryStore(nil)
	boom := errors.New("boom")
	_, err := Remember(context.Background(), store, nil, "k", time.Minute, nil, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestStoreRevalidatorIgnoresBlankPaths(t *testing.T) {
	var r *StoreRevalidator
	assert.NoError(t, r.Revalidate(context.Background(), "/x"))
	assert.NoError(t, NewStoreRevalidator(NewMemoryStore(nil)).Revalidate(context.Background(), " "))
}

func TestRememberSkipsStoreWhenInvalidatedDuringLoad(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	tags := []string{"/dashboard/invoices"}

	stale, err := Remember(ctx, store, nil, "k", time.Minute, tags, func(ctx context.Context) (string, error) {
		// A mutation commits and revalidates while the rows are in flight.
		require.NoError(t, NewStoreRevalidator(store).Revalidate(ctx, "/dashboard/invoices"))
		return "old-rows", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "old-rows", stale)
	assert.Equal(t, 0, store.Len())

	calls := 0
	fresh, err := Remember(ctx, store, nil, "k", time.Minute, tags, func(context.Context) (string, error) {
		calls++
		return "new-rows", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "new-rows", fresh)
}

func TestMemoryStoreSetIfCurrent(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	tags := []string{"/dashboard/invoices", "/dashboard"}

	versions, err := store.TagVersions(ctx, tags...)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, versions)

	require.NoError(t, store.InvalidateTags(ctx, "/dashboard"))
	stored, err := store.SetIfCurrent(ctx, "k", []byte("v"), 0, tags, versions)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, _ := store.Get(ctx, "k")
	assert.False(t, ok)

	versions, err = store.TagVersions(ctx, tags...)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, versions)
	stored, err = store.SetIfCurrent(ctx, "k", []byte("v"), 0, tags, versions)
	require.NoError(t, err)
	assert.True(t, stored)

	// Entries written this way still carry their tags.
	require.NoError(t, store.InvalidateTags(ctx, "/dashboard/invoices"))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)

	_, err = store.SetIfCurrent(ctx, "k", []byte("v"), 0, tags, []int64{0})
	assert.ErrorIs(t, err, ErrVersionMismatch)
	_, err = store.SetIfCurrent(ctx, "", []byte("v"), 0, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemoryStoreGetKeepsEntryReplacedAfterExpiry(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	store := NewMemoryStore(fc)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old"), time.Minute))
	fc.Advance(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "k", []byte("new"), time.Minute))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreGetRacingSetAfterExpiry(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	store := NewMemoryStore(fc)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old"), time.Minute))
	fc.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, _ = store.Get(ctx, "k")
		}()
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "k", []byte("new"), time.Hour)
		}()
	}
	wg.Wait()

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}
