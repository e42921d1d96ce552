package packages

import (
	"context"
	"slices"
	"time"

	"mortgage-dashboard/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Backfill recomputes the badge tags of every package and rewrites the rows whose stored
// tags differ. Rows edited directly in Supabase never pass through the Editor.
func Backfill(ctx context.Context, store Store) (int, error) {
	all, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, p := range all {
		tags := Classify(p.Features)
		if slices.Equal(tags, p.Tags) {
			continue
		}
		if err := store.SetTags(ctx, p.ID, tags); err != nil {
			return updated, err
		}
		updated++
	}
	metrics.AddBackfillUpdates(updated)
	return updated, nil
}

// ScheduleBackfill runs Backfill on schedule (standard cron syntax or @every) until the
// returned scheduler is stopped. An empty schedule returns a nil scheduler.
func ScheduleBackfill(schedule string, store Store, timeout time.Duration) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := Backfill(ctx, store)
		if err != nil {
			log.Error().Err(err).Msg("tag backfill failed")
			return
		}
		log.Info().Int("updated", n).Msg("tag backfill finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
