package state

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/poll"
)

// AccountObserver is notified after an account change event has been
// applied, so that live sessions see role or must-change-password updates
// immediately instead of at next sign-in.
type AccountObserver interface {
	AccountChanged(acc account.Account)
	AccountDeleted(id string)
}

// Reconciler applies the change-event stream to a State. Events are applied
// strictly in arrival order with no sequence numbers: last write wins.
// A malformed event is skipped with a diagnostic rather than crashing the
// pipeline.
type Reconciler struct {
	state     *State
	log       core.Logger
	observers []AccountObserver
	onApplied []func(ChangeEvent)
}

func NewReconciler(st *State, log core.Logger) *Reconciler {
	return &Reconciler{state: st, log: log}
}

// Observe registers an account observer. Not safe to call once Run started.
func (r *Reconciler) Observe(obs AccountObserver) {
	r.observers = append(r.observers, obs)
}

// OnApplied registers a hook invoked after each successfully applied event.
// Not safe to call once Run started.
func (r *Reconciler) OnApplied(fn func(ChangeEvent)) {
	r.onApplied = append(r.onApplied, fn)
}

// Run applies events from the channel until it closes or ctx is done.
func (r *Reconciler) Run(ctx context.Context, events <-chan ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Apply(ev)
		}
	}
}

// Apply applies one event to the state, returning whether it was accepted.
// Rejected events leave the collections untouched.
func (r *Reconciler) Apply(ev ChangeEvent) bool {
	var ok bool
	switch ev.Table {
	case TableAccounts:
		ok = r.applyAccount(ev)
	case TableAnnouncements:
		ok = r.applyAnnouncement(ev)
	case TableExams:
		ok = r.applyExam(ev)
	case TablePolls:
		ok = r.applyPoll(ev)
	default:
		r.log.Warn("reconciler: skipping event for unknown table", map[string]interface{}{"table": ev.Table, "type": ev.Type})
		return false
	}

	if ok {
		for _, fn := range r.onApplied {
			fn(ev)
		}
	}
	return ok
}

// rowID extracts just the row identity from a raw payload.
func rowID(raw json.RawMessage) string {
	var row struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return ""
	}
	return row.ID
}

// decodeRow unmarshals an insert/update payload into dst and checks that it
// carries an identity. Failing either check fails the whole event closed.
func (r *Reconciler) decodeRow(ev ChangeEvent, dst interface{}) bool {
	if err := json.Unmarshal(ev.New, dst); err != nil {
		r.log.Warn("reconciler: skipping malformed event payload",
			map[string]interface{}{"table": ev.Table, "type": ev.Type, "err": err.Error()})
		return false
	}
	if rowID(ev.New) == "" {
		r.log.Warn("reconciler: skipping event with missing row id",
			map[string]interface{}{"table": ev.Table, "type": ev.Type})
		return false
	}
	return true
}

func (r *Reconciler) applyAccount(ev ChangeEvent) bool {
	switch ev.Type {
	case EventInsert, EventUpdate:
		var acc account.Account
		if !r.decodeRow(ev, &acc) {
			return false
		}
		r.state.mu.Lock()
		// insert of a known id is a redelivery; update of an unknown id is a
		// fetch/subscribe race: both collapse into an upsert
		var found bool
		for i := range r.state.accounts {
			if r.state.accounts[i].ID == acc.ID {
				r.state.accounts[i] = acc
				found = true
				break
			}
		}
		if !found {
			r.state.accounts = append(r.state.accounts, acc)
		}
		r.state.mu.Unlock()
		for _, obs := range r.observers {
			obs.AccountChanged(acc)
		}
		return true

	case EventDelete:
		id := rowID(ev.Old)
		if id == "" {
			r.log.Warn("reconciler: skipping delete event with missing row id",
				map[string]interface{}{"table": ev.Table})
			return false
		}
		r.state.mu.Lock()
		for i := range r.state.accounts {
			if r.state.accounts[i].ID == id {
				r.state.accounts = append(r.state.accounts[:i], r.state.accounts[i+1:]...)
				break
			}
		}
		r.state.mu.Unlock()
		for _, obs := range r.observers {
			obs.AccountDeleted(id)
		}
		return true
	}

	r.log.Warn("reconciler: skipping event with unknown type",
		map[string]interface{}{"table": ev.Table, "type": ev.Type})
	return false
}

func (r *Reconciler) applyAnnouncement(ev ChangeEvent) bool {
	switch ev.Type {
	case EventInsert, EventUpdate:
		var ann announcement.Announcement
		if !r.decodeRow(ev, &ann) {
			return false
		}
		r.state.mu.Lock()
		var found bool
		for i := range r.state.announcements {
			if r.state.announcements[i].ID == ann.ID {
				r.state.announcements[i] = ann
				found = true
				break
			}
		}
		if !found {
			r.state.announcements = append(r.state.announcements, ann)
		}
		// most recent first; re-sorting the whole slice per event is fine at
		// classroom scale
		sort.SliceStable(r.state.announcements, func(i, j int) bool {
			return r.state.announcements[i].Date > r.state.announcements[j].Date
		})
		r.state.mu.Unlock()
		return true

	case EventDelete:
		id := rowID(ev.Old)
		if id == "" {
			r.log.Warn("reconciler: skipping delete event with missing row id",
				map[string]interface{}{"table": ev.Table})
			return false
		}
		r.state.mu.Lock()
		for i := range r.state.announcements {
			if r.state.announcements[i].ID == id {
				r.state.announcements = append(r.state.announcements[:i], r.state.announcements[i+1:]...)
				break
			}
		}
		r.state.mu.Unlock()
		return true
	}

	r.log.Warn("reconciler: skipping event with unknown type",
		map[string]interface{}{"table": ev.Table, "type": ev.Type})
	return false
}

func (r *Reconciler) applyExam(ev ChangeEvent) bool {
	switch ev.Type {
	case EventInsert, EventUpdate:
		var ex exam.Exam
		if !r.decodeRow(ev, &ex) {
			return false
		}
		r.state.mu.Lock()
		var found bool
		for i := range r.state.exams {
			if r.state.exams[i].ID == ex.ID {
				r.state.exams[i] = ex
				found = true
				break
			}
		}
		if !found {
			r.state.exams = append(r.state.exams, ex)
		}
		// soonest first
		sort.SliceStable(r.state.exams, func(i, j int) bool {
			return r.state.exams[i].Date < r.state.exams[j].Date
		})
		r.state.mu.Unlock()
		return true

	case EventDelete:
		id := rowID(ev.Old)
		if id == "" {
			r.log.Warn("reconciler: skipping delete event with missing row id",
				map[string]interface{}{"table": ev.Table})
			return false
		}
		r.state.mu.Lock()
		for i := range r.state.exams {
			if r.state.exams[i].ID == id {
				r.state.exams = append(r.state.exams[:i], r.state.exams[i+1:]...)
				break
			}
		}
		r.state.mu.Unlock()
		return true
	}

	r.log.Warn("reconciler: skipping event with unknown type",
		map[string]interface{}{"table": ev.Table, "type": ev.Type})
	return false
}

func (r *Reconciler) applyPoll(ev ChangeEvent) bool {
	switch ev.Type {
	case EventInsert, EventUpdate:
		var p poll.Poll
		if !r.decodeRow(ev, &p) {
			return false
		}
		r.state.mu.Lock()
		var found bool
		for i := range r.state.polls {
			if r.state.polls[i].ID == p.ID {
				r.state.polls[i] = p
				found = true
				break
			}
		}
		if !found {
			// new polls go first, matching the bulk-fetch ordering
			r.state.polls = append([]poll.Poll{p}, r.state.polls...)
		}
		r.state.mu.Unlock()
		return true

	case EventDelete:
		id := rowID(ev.Old)
		if id == "" {
			r.log.Warn("reconciler: skipping delete event with missing row id",
				map[string]interface{}{"table": ev.Table})
			return false
		}
		r.state.mu.Lock()
		for i := range r.state.polls {
			if r.state.polls[i].ID == id {
				r.state.polls = append(r.state.polls[:i], r.state.polls[i+1:]...)
				break
			}
		}
		r.state.mu.Unlock()
		return true
	}

	r.log.Warn("reconciler: skipping event with unknown type",
		map[string]interface{}{"table": ev.Table, "type": ev.Type})
	return false
}
