package poll

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/classeapp/classe/core"
)

var (
	// errors
	ErrNotFound       = errors.New("poll not found")
	ErrOptionNotFound = errors.New("poll option not found")
	ErrAlreadyVoted   = errors.New("this account has already voted on this poll")
	ErrExpired        = errors.New("this poll has expired")
)

type (
	Repository interface {
		CreatePoll(ctx context.Context, p Poll) (Poll, error)
		// QueryAllPolls returns polls ordered by expiration, latest first.
		QueryAllPolls(ctx context.Context) ([]Poll, error)
		GetPollByID(ctx context.Context, id string) (Poll, error)
		// UpdatePollVotes writes options and voters in a single atomic update
		// guarded by voterID's absence from the stored voter set; it returns
		// ErrAlreadyVoted when the guard fails. This is what makes concurrent
		// double votes lose instead of double counting.
		UpdatePollVotes(ctx context.Context, pollID, voterID string, options OptionList, voters IDList) error
		DeletePoll(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Create(ctx context.Context, np NewPoll) (Poll, error) {
	p := Poll{
		ID:           uuid.New().String(),
		Title:        np.Title,
		Anonymous:    np.Anonymous,
		CreatedAt:    svc.nowFunc().UTC(),
		ExpiresAt:    np.ExpiresAt,
		Options:      make(OptionList, 0, len(np.Options)),
		VotedUserIDs: IDList{},
	}
	for _, opt := range np.Options {
		p.Options = append(p.Options, Option{ID: uuid.New().String(), Text: opt.Text})
	}
	return svc.repo.CreatePoll(ctx, p)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Poll, error) {
	return svc.repo.QueryAllPolls(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Poll, error) {
	return svc.repo.GetPollByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeletePoll(ctx, id)
}

// CastVote applies one vote from voterID to optionID on poll pollID,
// exactly once per (poll, voter). The returned poll is the optimistic local
// view; the authoritative state is whatever the change feed echoes back.
func (svc *Service) CastVote(ctx context.Context, pollID, optionID, voterID string) (Poll, error) {
	p, err := svc.repo.GetPollByID(ctx, pollID)
	if err != nil {
		return Poll{}, err
	}
	if p.IsExpired(svc.nowFunc()) {
		return Poll{}, ErrExpired
	}
	if p.HasVoted(voterID) {
		return Poll{}, ErrAlreadyVoted
	}

	options := make(OptionList, len(p.Options))
	copy(options, p.Options)
	var found bool
	for i := range options {
		if options[i].ID == optionID {
			options[i].Votes++
			found = true
			break
		}
	}
	if !found {
		return Poll{}, core.NewValidationError(ErrOptionNotFound, core.FieldError{Field: "option_id", Error: ErrOptionNotFound.Error()})
	}

	voters := make(IDList, len(p.VotedUserIDs), len(p.VotedUserIDs)+1)
	copy(voters, p.VotedUserIDs)
	voters = append(voters, voterID)

	if err := svc.repo.UpdatePollVotes(ctx, pollID, voterID, options, voters); err != nil {
		return Poll{}, err
	}

	p.Options = options
	p.VotedUserIDs = voters
	return p, nil
}
