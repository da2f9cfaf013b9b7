package state

import "encoding/json"

// Event types, as emitted by the change feed.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Reconciled tables. The names are the wire table names.
const (
	TableAccounts      = "users"
	TableAnnouncements = "announcements"
	TableExams         = "exams"
	TablePolls         = "polls"
)

// ChangeEvent is one row change echoed by the remote store. New carries the
// full row for inserts and updates; Old carries at least the row identity
// for deletes. Payloads stay raw until the reconciler validates them.
type ChangeEvent struct {
	Type  string          `json:"event_type"`
	Table string          `json:"table"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}
