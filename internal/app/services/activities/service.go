// Package activities records and serves the dashboard activity feed.
package activities

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// FeedCap is how many items the dashboard feed shows.
const FeedCap = 5

// EventActivityNew is the realtime event name for new activity entries.
const EventActivityNew = "activity:new"

// Broadcaster pushes named events to realtime subscribers. A nil broadcaster
// is accepted; recording then only persists.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Service persists activity entries and fans them out over the realtime
// channel.
type Service struct {
	store       storage.ActivityStore
	broadcaster Broadcaster
	log         *logger.Logger
	now         func() time.Time
}

// New constructs an activity service.
func New(store storage.ActivityStore, broadcaster Broadcaster, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("activities")
	}
	return &Service{store: store, broadcaster: broadcaster, log: log, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record persists one activity entry and broadcasts it. Persistence failures
// are logged and swallowed: activity is advisory and must never fail the
// operation that produced it.
func (s *Service) Record(ctx context.Context, kind, message, actor string) {
	entry := activity.Entry{
		Kind:      kind,
		Message:   strings.TrimSpace(message),
		Actor:     strings.TrimSpace(actor),
		CreatedAt: s.now().UTC(),
	}

	created, err := s.store.CreateActivity(ctx, entry)
	if err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("record activity")
		return
	}

	if s.broadcaster != nil {
		event := activity.Event{
			ID:        created.ID,
			Kind:      created.Kind,
			Message:   created.Message,
			Actor:     created.Actor,
			CreatedAt: created.CreatedAt,
		}
		s.broadcaster.Broadcast(EventActivityNew, event)
	}
}

// Recent returns the newest entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]activity.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = FeedCap
	}
	return s.store.ListRecentActivity(ctx, limit)
}

// Merge combines REST-fetched entries with socket-received events into the
// feed the dashboard shows: duplicates collapse on identifier, the result is
// sorted newest first, and at most cap items survive. A cap of zero or less
// means FeedCap.
func Merge(fetched []activity.Entry, received []activity.Event, cap int) []activity.Entry {
	if cap <= 0 {
		cap = FeedCap
	}

	seen := make(map[string]struct{}, len(fetched)+len(received))
	merged := make([]activity.Entry, 0, len(fetched)+len(received))

	add := func(entry activity.Entry) {
		if entry.ID != "" {
			if _, dup := seen[entry.ID]; dup {
				return
			}
			seen[entry.ID] = struct{}{}
		}
		merged = append(merged, entry)
	}

	for _, event := range received {
		add(event.Entry())
	}
	for _, entry := range fetched {
		add(entry)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > cap {
		merged = merged[:cap]
	}
	return merged
}
