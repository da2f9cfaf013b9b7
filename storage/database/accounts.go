package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/account"
)

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, exclAccounts ...account.Account) error {
	query := `SELECT COUNT(*) FROM users WHERE email = ?`
	args := []interface{}{email}
	if len(exclAccounts) > 0 {
		ids := make([]string, 0, len(exclAccounts))
		for _, acc := range exclAccounts {
			ids = append(ids, acc.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT COUNT(*) FROM users WHERE email = ? AND id NOT IN (?)`, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		query, args = q, inArgs
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	err := withRetry(ctx, func(ctx context.Context) error {
		_, err := repo.db.NamedExecContext(ctx, `
			INSERT INTO users (id, nom, email, role, password, must_change_password)
			VALUES (:id, :nom, :email, :role, :password, :must_change_password)`, acc)
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (repo *accountRepository) QueryAllAccounts(ctx context.Context) ([]account.Account, error) {
	accs := []account.Account{}
	if err := repo.db.SelectContext(ctx, &accs, `SELECT * FROM users`); err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	return accs, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	var acc account.Account
	if err := repo.db.GetContext(ctx, &acc, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "getting account by id")
	}
	return acc, nil
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	var acc account.Account
	if err := repo.db.GetContext(ctx, &acc, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "getting account by email")
	}
	return acc, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	err := withRetry(ctx, func(ctx context.Context) error {
		res, err := repo.db.NamedExecContext(ctx, `
			UPDATE users
			SET nom = :nom, email = :email, role = :role, password = :password, must_change_password = :must_change_password
			WHERE id = :id`, acc)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return permanent(account.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (repo *accountRepository) DeleteAccount(ctx context.Context, id string) error {
	return withRetry(ctx, func(ctx context.Context) error {
		res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return permanent(account.ErrNotFound)
		}
		return nil
	})
}

func (repo *accountRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = $1`, account.RoleAdmin); err != nil {
		return 0, errors.Wrap(err, "counting admins")
	}
	return count, nil
}
