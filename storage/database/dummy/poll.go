package dummydb

import (
	"context"
	"sort"

	"github.com/classeapp/classe/core/poll"
)

type pollRepository struct {
	db *DB
}

var _ poll.Repository = (*pollRepository)(nil)

func NewPollRepository(db *DB) *pollRepository {
	return &pollRepository{db: db}
}

func (repo *pollRepository) CreatePoll(_ context.Context, p poll.Poll) (poll.Poll, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.polls[p.ID] = p
	return p, nil
}

func (repo *pollRepository) QueryAllPolls(_ context.Context) ([]poll.Poll, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	polls := make([]poll.Poll, 0, len(repo.db.polls))
	for _, p := range repo.db.polls {
		polls = append(polls, p)
	}
	sort.SliceStable(polls, func(i, j int) bool { return polls[i].ExpiresAt.After(polls[j].ExpiresAt) })
	return polls, nil
}

func (repo *pollRepository) GetPollByID(_ context.Context, id string) (poll.Poll, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.polls[id]; ok {
		return p, nil
	}
	return poll.Poll{}, poll.ErrNotFound
}

func (repo *pollRepository) UpdatePollVotes(_ context.Context, pollID, voterID string, options poll.OptionList, voters poll.IDList) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.polls[pollID]
	if !ok {
		return poll.ErrNotFound
	}
	// same guard as the real store: the write only lands if the voter is not
	// yet in the stored set
	if p.HasVoted(voterID) {
		return poll.ErrAlreadyVoted
	}
	p.Options = options
	p.VotedUserIDs = voters
	repo.db.polls[pollID] = p
	return nil
}

func (repo *pollRepository) DeletePoll(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.polls[id]; !ok {
		return poll.ErrNotFound
	}
	delete(repo.db.polls, id)
	return nil
}
