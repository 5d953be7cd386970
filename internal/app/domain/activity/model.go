// Package activity defines the dashboard activity log.
package activity

import "time"

// Kinds of recorded activity.
const (
	KindTestSubmitted  = "test_submitted"
	KindProgramCreated = "program_created"
	KindProgramUpdated = "program_updated"
	KindNewsPublished  = "news_published"
	KindAdminCreated   = "admin_created"
)

// Entry is one activity log item. REST responses expose the identifier as
// "_id" while realtime events carry it as "id"; Event mirrors this entry
// shape on the socket side.
type Entry struct {
	ID        string    `json:"_id,omitempty"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is an activity item as pushed over the realtime channel.
type Event struct {
	ID        string    `json:"id,omitempty"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry converts a realtime event to the canonical entry shape.
func (e Event) Entry() Entry {
	return Entry{ID: e.ID, Kind: e.Kind, Message: e.Message, Actor: e.Actor, CreatedAt: e.CreatedAt}
}
