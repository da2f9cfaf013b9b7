package poll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeapp/classe/core"
)

// fakeRepo mimics the store's guarded vote update.
type fakeRepo struct {
	polls map[string]Poll
}

func newFakeRepo(polls ...Poll) *fakeRepo {
	repo := &fakeRepo{polls: make(map[string]Poll, len(polls))}
	for _, p := range polls {
		repo.polls[p.ID] = p
	}
	return repo
}

func (r *fakeRepo) CreatePoll(_ context.Context, p Poll) (Poll, error) {
	r.polls[p.ID] = p
	return p, nil
}

func (r *fakeRepo) QueryAllPolls(_ context.Context) ([]Poll, error) {
	out := make([]Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) GetPollByID(_ context.Context, id string) (Poll, error) {
	if p, ok := r.polls[id]; ok {
		return p, nil
	}
	return Poll{}, ErrNotFound
}

func (r *fakeRepo) UpdatePollVotes(_ context.Context, pollID, voterID string, options OptionList, voters IDList) error {
	p, ok := r.polls[pollID]
	if !ok {
		return ErrNotFound
	}
	if p.HasVoted(voterID) {
		return ErrAlreadyVoted
	}
	p.Options = options
	p.VotedUserIDs = voters
	r.polls[pollID] = p
	return nil
}

func (r *fakeRepo) DeletePoll(_ context.Context, id string) error {
	if _, ok := r.polls[id]; !ok {
		return ErrNotFound
	}
	delete(r.polls, id)
	return nil
}

var _ Repository = (*fakeRepo)(nil)

func testService(repo Repository, now time.Time) *Service {
	svc := NewService(repo)
	svc.nowFunc = func() time.Time { return now }
	return svc
}

func TestCreateStampsIdentityAndZeroesCounts(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc := testService(newFakeRepo(), now)

	p, err := svc.Create(context.Background(), NewPoll{
		Title:     "Voyage",
		ExpiresAt: now.Add(48 * time.Hour),
		Options:   []NewOption{{Text: "Oui"}, {Text: "Non"}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, now, p.CreatedAt)
	require.Len(t, p.Options, 2)
	for _, opt := range p.Options {
		assert.NotEmpty(t, opt.ID)
		assert.Zero(t, opt.Votes)
	}
	assert.Empty(t, p.VotedUserIDs)
}

func TestCastVote(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	base := Poll{
		ID:        "p1",
		Title:     "Voyage",
		ExpiresAt: now.Add(24 * time.Hour),
		Options: OptionList{
			{ID: "o1", Text: "Oui", Votes: 1},
			{ID: "o2", Text: "Non"},
		},
		VotedUserIDs: IDList{"u9"},
	}

	t.Run("counts once and records the voter", func(t *testing.T) {
		repo := newFakeRepo(base)
		svc := testService(repo, now)

		p, err := svc.CastVote(context.Background(), "p1", "o2", "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, p.Options[1].Votes)
		assert.True(t, p.HasVoted("u1"))

		stored := repo.polls["p1"]
		assert.Equal(t, 1, stored.Options[1].Votes)
		assert.True(t, stored.HasVoted("u1"))
	})

	t.Run("second vote by same account is rejected", func(t *testing.T) {
		repo := newFakeRepo(base)
		svc := testService(repo, now)

		_, err := svc.CastVote(context.Background(), "p1", "o1", "u9")
		assert.Equal(t, ErrAlreadyVoted, err)
		assert.Equal(t, 1, repo.polls["p1"].Options[0].Votes, "count must not move")
	})

	t.Run("expired poll rejects votes", func(t *testing.T) {
		svc := testService(newFakeRepo(base), now.Add(48*time.Hour))

		_, err := svc.CastVote(context.Background(), "p1", "o1", "u1")
		assert.Equal(t, ErrExpired, err)
	})

	t.Run("unknown option", func(t *testing.T) {
		svc := testService(newFakeRepo(base), now)

		_, err := svc.CastVote(context.Background(), "p1", "nope", "u1")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("unknown poll", func(t *testing.T) {
		svc := testService(newFakeRepo(), now)

		_, err := svc.CastVote(context.Background(), "p1", "o1", "u1")
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("store guard wins a race the local check missed", func(t *testing.T) {
		repo := newFakeRepo(base)
		svc := testService(repo, now)

		// simulate a concurrent vote landing between read and write
		raced := repo.polls["p1"]
		raced.VotedUserIDs = append(raced.VotedUserIDs, "u1")
		fresh := newFakeRepo(raced)
		svc.repo = &readStaleRepo{read: repo, write: fresh}

		_, err := svc.CastVote(context.Background(), "p1", "o1", "u1")
		assert.Equal(t, ErrAlreadyVoted, err)
	})
}

// readStaleRepo serves reads from one repo and writes through another,
// standing in for a concurrent writer.
type readStaleRepo struct {
	read  *fakeRepo
	write *fakeRepo
}

func (r *readStaleRepo) CreatePoll(ctx context.Context, p Poll) (Poll, error) {
	return r.write.CreatePoll(ctx, p)
}
func (r *readStaleRepo) QueryAllPolls(ctx context.Context) ([]Poll, error) {
	return r.read.QueryAllPolls(ctx)
}
func (r *readStaleRepo) GetPollByID(ctx context.Context, id string) (Poll, error) {
	return r.read.GetPollByID(ctx, id)
}
func (r *readStaleRepo) UpdatePollVotes(ctx context.Context, pollID, voterID string, options OptionList, voters IDList) error {
	return r.write.UpdatePollVotes(ctx, pollID, voterID, options, voters)
}
func (r *readStaleRepo) DeletePoll(ctx context.Context, id string) error {
	return r.write.DeletePoll(ctx, id)
}
