package state

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/poll"
)

// State holds the four reconciled collections. The remote store is the
// source of truth; these are a best-effort cache kept in sync by the
// Reconciler, which is the only writer. Renderers get snapshot copies and
// never mutate anything in place.
type State struct {
	mu sync.RWMutex

	accounts      []account.Account
	announcements []announcement.Announcement
	exams         []exam.Exam
	polls         []poll.Poll
}

// Snapshot is a point-in-time copy of all four collections.
type Snapshot struct {
	Accounts      []account.Account           `json:"users"`
	Announcements []announcement.Announcement `json:"announcements"`
	Exams         []exam.Exam                 `json:"exams"`
	Polls         []poll.Poll                 `json:"polls"`
}

func New() *State {
	return &State{
		accounts:      []account.Account{},
		announcements: []announcement.Announcement{},
		exams:         []exam.Exam{},
		polls:         []poll.Poll{},
	}
}

// Load bulk-fetches all four collections from the repositories. It is meant
// to run once at startup, before the event loop starts; a concurrent write
// racing the fetch is absorbed later by the reconciler's update-as-insert
// behavior.
func (st *State) Load(
	ctx context.Context,
	accounts account.Repository,
	announcements announcement.Repository,
	exams exam.Repository,
	polls poll.Repository,
) error {
	accs, err := accounts.QueryAllAccounts(ctx)
	if err != nil {
		return errors.Wrap(err, "loading accounts")
	}
	anns, err := announcements.QueryAllAnnouncements(ctx)
	if err != nil {
		return errors.Wrap(err, "loading announcements")
	}
	exs, err := exams.QueryAllExams(ctx)
	if err != nil {
		return errors.Wrap(err, "loading exams")
	}
	pls, err := polls.QueryAllPolls(ctx)
	if err != nil {
		return errors.Wrap(err, "loading polls")
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.accounts = accs
	st.announcements = anns
	st.exams = exs
	st.polls = pls
	return nil
}

func (st *State) Accounts() []account.Account {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]account.Account, len(st.accounts))
	copy(out, st.accounts)
	return out
}

// GetAccount returns the reconciled account with the given identity.
func (st *State) GetAccount(id string) (account.Account, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, acc := range st.accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return account.Account{}, false
}

func (st *State) Announcements() []announcement.Announcement {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]announcement.Announcement, len(st.announcements))
	copy(out, st.announcements)
	return out
}

func (st *State) Exams() []exam.Exam {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]exam.Exam, len(st.exams))
	copy(out, st.exams)
	return out
}

func (st *State) Polls() []poll.Poll {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]poll.Poll, len(st.polls))
	copy(out, st.polls)
	return out
}

func (st *State) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	snap := Snapshot{
		Accounts:      make([]account.Account, len(st.accounts)),
		Announcements: make([]announcement.Announcement, len(st.announcements)),
		Exams:         make([]exam.Exam, len(st.exams)),
		Polls:         make([]poll.Poll, len(st.polls)),
	}
	copy(snap.Accounts, st.accounts)
	copy(snap.Announcements, st.announcements)
	copy(snap.Exams, st.exams)
	copy(snap.Polls, st.polls)
	return snap
}
