package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/poll"
)

type pollRepository struct {
	db *sqlx.DB
}

var _ poll.Repository = (*pollRepository)(nil)

func NewPollRepository(db *sqlx.DB) *pollRepository {
	return &pollRepository{db: db}
}

func (repo *pollRepository) CreatePoll(ctx context.Context, p poll.Poll) (poll.Poll, error) {
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := repo.db.NamedExecContext(ctx, `
			INSERT INTO polls (id, titre, anon, date_creation, date_expiration, options, voted_user_ids)
			VALUES (:id, :titre, :anon, :date_creation, :date_expiration, :options, :voted_user_ids)`, p)
		return err
	})
	if err != nil {
		return poll.Poll{}, err
	}
	return p, nil
}

func (repo *pollRepository) QueryAllPolls(ctx context.Context) ([]poll.Poll, error) {
	polls := []poll.Poll{}
	if err := repo.db.SelectContext(ctx, &polls, `SELECT * FROM polls ORDER BY date_expiration DESC`); err != nil {
		return nil, errors.Wrap(err, "querying polls")
	}
	return polls, nil
}

func (repo *pollRepository) GetPollByID(ctx context.Context, id string) (poll.Poll, error) {
	var p poll.Poll
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM polls WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return poll.Poll{}, poll.ErrNotFound
		}
		return poll.Poll{}, errors.Wrap(err, "getting poll by id")
	}
	return p, nil
}

// UpdatePollVotes writes options and voters together, guarded by voterID not
// already being in the stored voter set. Losing the guard means another vote
// by the same account landed first.
func (repo *pollRepository) UpdatePollVotes(ctx context.Context, pollID, voterID string, options poll.OptionList, voters poll.IDList) error {
	return withRetry(ctx, func(ctx context.Context) error {
		res, err := repo.db.ExecContext(ctx, `
			UPDATE polls
			SET options = $2, voted_user_ids = $3
			WHERE id = $1 AND NOT (voted_user_ids @> to_jsonb($4::text))`,
			pollID, options, voters, voterID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// either the poll vanished or the voter got there twice
			var exists bool
			if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM polls WHERE id = $1)`, pollID); err != nil {
				return err
			}
			if !exists {
				return permanent(poll.ErrNotFound)
			}
			return permanent(poll.ErrAlreadyVoted)
		}
		return nil
	})
}

func (repo *pollRepository) DeletePoll(ctx context.Context, id string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		res, err := repo.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return permanent(poll.ErrNotFound)
		}
		return nil
	})
}
