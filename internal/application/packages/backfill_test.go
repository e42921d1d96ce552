package packages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestBackfill_UpdatesOnlyStaleRows(t *testing.T) {
	stale := pkg("DBS", "stale", 1, "2025-01-01")
	stale.Features = strPtr("Exclusive offer")
	current := pkg("UOB", "current", 1, "2025-01-01")
	current.Features = strPtr("Best rate")
	current.Tags = datatypes.JSONSlice[string]{TagBestRate}
	plain := pkg("OCBC", "plain", 1, "2025-01-01")

	store := newFakeStore(stale, current, plain)
	n, err := Backfill(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.calls["set_tags"])
	assert.Equal(t, datatypes.JSONSlice[string]{TagExclusive}, store.tagged[stale.ID])
}

func TestBackfill_ListFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errBackend
	_, err := Backfill(context.Background(), store)
	assert.ErrorIs(t, err, errBackend)
}

func TestScheduleBackfill(t *testing.T) {
	c, err := ScheduleBackfill("", newFakeStore(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ScheduleBackfill("not a schedule", newFakeStore(), time.Second)
	assert.Error(t, err)

	c, err = ScheduleBackfill("@every 1h", newFakeStore(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
