package dummydb

import (
	"context"

	"github.com/classeapp/classe/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CheckEmailUniqueness(_ context.Context, email string, exclAccounts ...account.Account) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(exclAccounts))
	for _, acc := range exclAccounts {
		excluded[acc.ID] = true
	}
	for _, acc := range repo.db.accounts {
		if acc.Email == email && !excluded[acc.ID] {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) QueryAllAccounts(_ context.Context) ([]account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	accs := make([]account.Account, 0, len(repo.db.accounts))
	for _, acc := range repo.db.accounts {
		accs = append(accs, acc)
	}
	return accs, nil
}

func (repo *accountRepository) GetAccountByID(_ context.Context, id string) (account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if acc, ok := repo.db.accounts[id]; ok {
		return acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(_ context.Context, email string) (account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, acc := range repo.db.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.accounts[acc.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	repo.db.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) DeleteAccount(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.accounts[id]; !ok {
		return account.ErrNotFound
	}
	delete(repo.db.accounts, id)
	return nil
}

func (repo *accountRepository) CountAdmins(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, acc := range repo.db.accounts {
		if acc.IsAdmin() {
			count++
		}
	}
	return count, nil
}
