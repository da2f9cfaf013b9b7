package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/poll"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestReconciler() (*State, *Reconciler) {
	st := New()
	return st, NewReconciler(st, nopLogger{})
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func insertEvent(t *testing.T, table string, row interface{}) ChangeEvent {
	t.Helper()
	return ChangeEvent{Type: EventInsert, Table: table, New: mustMarshal(t, row)}
}

func updateEvent(t *testing.T, table string, row interface{}) ChangeEvent {
	t.Helper()
	return ChangeEvent{Type: EventUpdate, Table: table, New: mustMarshal(t, row)}
}

func deleteEvent(t *testing.T, table, id string) ChangeEvent {
	t.Helper()
	return ChangeEvent{Type: EventDelete, Table: table, Old: mustMarshal(t, map[string]string{"id": id})}
}

func TestApplyInsertIsIdempotentOnRedelivery(t *testing.T) {
	st, r := newTestReconciler()

	ann := announcement.Announcement{ID: "a1", Title: "Sortie", Date: "2026-09-01"}
	assert.True(t, r.Apply(insertEvent(t, TableAnnouncements, ann)))

	// redelivered insert with fresher content must update in place
	ann.Title = "Sortie annulée"
	assert.True(t, r.Apply(insertEvent(t, TableAnnouncements, ann)))

	anns := st.Announcements()
	require.Len(t, anns, 1)
	assert.Equal(t, "Sortie annulée", anns[0].Title)
}

func TestApplyUpdateForUnknownRowInserts(t *testing.T) {
	st, r := newTestReconciler()

	// an update racing the initial fetch arrives for a row we never saw
	ex := exam.Exam{ID: "e1", Subject: "Maths", Date: "2026-09-15"}
	assert.True(t, r.Apply(updateEvent(t, TableExams, ex)))

	exams := st.Exams()
	require.Len(t, exams, 1)
	assert.Equal(t, "Maths", exams[0].Subject)
}

func TestApplyLastWriteWins(t *testing.T) {
	st, r := newTestReconciler()

	ex := exam.Exam{ID: "e1", Subject: "Maths", Date: "2026-09-15", Room: "B12"}
	require.True(t, r.Apply(insertEvent(t, TableExams, ex)))

	ex.Room = "A3"
	require.True(t, r.Apply(updateEvent(t, TableExams, ex)))
	ex.Room = "C7"
	require.True(t, r.Apply(updateEvent(t, TableExams, ex)))

	exams := st.Exams()
	require.Len(t, exams, 1)
	assert.Equal(t, "C7", exams[0].Room)
}

func TestApplyKeepsAnnouncementsMostRecentFirst(t *testing.T) {
	st, r := newTestReconciler()

	for _, ann := range []announcement.Announcement{
		{ID: "a1", Title: "old", Date: "2026-08-20"},
		{ID: "a2", Title: "newest", Date: "2026-09-10"},
		{ID: "a3", Title: "middle", Date: "2026-09-01"},
	} {
		require.True(t, r.Apply(insertEvent(t, TableAnnouncements, ann)))
	}

	anns := st.Announcements()
	require.Len(t, anns, 3)
	assert.Equal(t, []string{"a2", "a3", "a1"}, []string{anns[0].ID, anns[1].ID, anns[2].ID})
}

func TestApplyKeepsExamsSoonestFirst(t *testing.T) {
	st, r := newTestReconciler()

	for _, ex := range []exam.Exam{
		{ID: "e1", Date: "2026-10-01"},
		{ID: "e2", Date: "2026-09-05"},
		{ID: "e3", Date: "2026-09-20"},
	} {
		require.True(t, r.Apply(insertEvent(t, TableExams, ex)))
	}

	exams := st.Exams()
	require.Len(t, exams, 3)
	assert.Equal(t, []string{"e2", "e3", "e1"}, []string{exams[0].ID, exams[1].ID, exams[2].ID})
}

func TestApplyDeleteOfAbsentRowIsNoop(t *testing.T) {
	st, r := newTestReconciler()

	ann := announcement.Announcement{ID: "a1", Date: "2026-09-01"}
	require.True(t, r.Apply(insertEvent(t, TableAnnouncements, ann)))

	// delete echoed twice: second application finds nothing and stays quiet
	assert.True(t, r.Apply(deleteEvent(t, TableAnnouncements, "a1")))
	assert.True(t, r.Apply(deleteEvent(t, TableAnnouncements, "a1")))
	assert.Empty(t, st.Announcements())
}

func TestApplySkipsMalformedEvents(t *testing.T) {
	st, r := newTestReconciler()

	ex := exam.Exam{ID: "e1", Date: "2026-09-15"}
	require.True(t, r.Apply(insertEvent(t, TableExams, ex)))

	tests := []struct {
		name string
		ev   ChangeEvent
	}{
		{"bad payload", ChangeEvent{Type: EventInsert, Table: TableExams, New: json.RawMessage(`{not json`)}},
		{"missing row id", ChangeEvent{Type: EventInsert, Table: TableExams, New: json.RawMessage(`{"matiere":"Maths"}`)}},
		{"unknown table", insertEvent(t, "grades", ex)},
		{"unknown event type", ChangeEvent{Type: "TRUNCATE", Table: TableExams, New: mustMarshal(t, ex)}},
		{"delete missing id", ChangeEvent{Type: EventDelete, Table: TableExams, Old: json.RawMessage(`{}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, r.Apply(tt.ev))
			assert.Len(t, st.Exams(), 1, "state must be untouched")
		})
	}
}

func TestApplyPollInsertGoesFirst(t *testing.T) {
	st, r := newTestReconciler()

	require.True(t, r.Apply(insertEvent(t, TablePolls, poll.Poll{ID: "p1", Title: "first"})))
	require.True(t, r.Apply(insertEvent(t, TablePolls, poll.Poll{ID: "p2", Title: "second"})))

	polls := st.Polls()
	require.Len(t, polls, 2)
	assert.Equal(t, "p2", polls[0].ID)
}

type recordingObserver struct {
	changed []account.Account
	deleted []string
}

func (o *recordingObserver) AccountChanged(acc account.Account) { o.changed = append(o.changed, acc) }
func (o *recordingObserver) AccountDeleted(id string)           { o.deleted = append(o.deleted, id) }

func TestApplyAccountNotifiesObservers(t *testing.T) {
	st, r := newTestReconciler()
	obs := &recordingObserver{}
	r.Observe(obs)

	acc := account.Account{ID: "u1", Name: "Alice", Role: account.RoleMember}
	require.True(t, r.Apply(insertEvent(t, TableAccounts, acc)))

	// promotion lands through the feed and the session must hear about it
	acc.Role = account.RoleAdmin
	require.True(t, r.Apply(updateEvent(t, TableAccounts, acc)))

	require.True(t, r.Apply(deleteEvent(t, TableAccounts, "u1")))

	require.Len(t, obs.changed, 2)
	assert.Equal(t, account.RoleAdmin, obs.changed[1].Role)
	assert.Equal(t, []string{"u1"}, obs.deleted)
	assert.Empty(t, st.Accounts())
}

func TestOnAppliedFiresOnlyOnSuccess(t *testing.T) {
	_, r := newTestReconciler()
	var applied []ChangeEvent
	r.OnApplied(func(ev ChangeEvent) { applied = append(applied, ev) })

	require.True(t, r.Apply(insertEvent(t, TableExams, exam.Exam{ID: "e1", Date: "2026-09-15"})))
	require.False(t, r.Apply(ChangeEvent{Type: EventInsert, Table: TableExams, New: json.RawMessage(`broken`)}))

	assert.Len(t, applied, 1)
}

func TestGetAccountReadsReconciledView(t *testing.T) {
	st, r := newTestReconciler()

	acc := account.Account{ID: "u1", Name: "Alice", MustChangePassword: true}
	require.True(t, r.Apply(insertEvent(t, TableAccounts, acc)))

	got, ok := st.GetAccount("u1")
	require.True(t, ok)
	assert.True(t, got.MustChangePassword)

	_, ok = st.GetAccount("u2")
	assert.False(t, ok)
}
