package main

import (
	"context"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	acc, err := cli.accountRepo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	acc.Password = pwd
	acc.MustChangePassword = false
	_, err = cli.accountRepo.UpdateAccount(ctx, acc)
	return err
}
