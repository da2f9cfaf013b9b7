package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
)

// addAccount updates or creates an account.Account
func (cli *commandLine) addAccount(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	role := account.RoleMember
	if isAdmin {
		role = account.RoleAdmin
	}

	acc, err := cli.accountRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != account.ErrNotFound {
			return err
		}
		acc = account.Account{
			ID:       uuid.New().String(),
			Name:     name,
			Email:    email,
			Role:     role,
			Password: pwd,
		}
		_, err = cli.accountRepo.CreateAccount(ctx, acc)
		return err
	}

	acc.Name = name
	acc.Role = role
	acc.Password = pwd
	acc.MustChangePassword = false
	_, err = cli.accountRepo.UpdateAccount(ctx, acc)
	return err
}
