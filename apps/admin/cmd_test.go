package main

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeapp/classe/core/account"
	dummydb "github.com/classeapp/classe/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return &commandLine{accountRepo: dummydb.NewAccountRepository(db)}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func Test_commandLine_run(t *testing.T) {
	tests := []struct {
		name    string
		args    []string // without program name
		pwd     string
		wantErr error
	}{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "addaccount: no flags", args: []string{"addaccount"}, wantErr: errHelp},
		{name: "addaccount: no password", args: []string{"addaccount", "-name", "Alice", "-email", "alice@test.cd"}, wantErr: errHelp},
		{name: "resetpassword: no email", args: []string{"resetpassword"}, pwd: "lol", wantErr: errHelp},
		{name: "resetpassword: account not found", args: []string{"resetpassword", "-email", "ghost@test.cd"}, pwd: "lol", wantErr: account.ErrNotFound},
		{name: "addaccount", args: []string{"addaccount", "-name", "Alice", "-email", "alice@test.cd", "-admin"}, pwd: "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := setup(t)
			mockPassword(t, tt.pwd)

			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_commandLine_addAccount(t *testing.T) {
	cli := setup(t)
	mockPassword(t, "s3cret")

	require.NoError(t, cli.run([]string{"admin", "addaccount", "-name", "Alice", "-email", "Alice@Test.cd", "-admin"}))

	acc, err := cli.accountRepo.GetAccountByEmail(context.Background(), "alice@test.cd")
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, acc.Role)
	assert.True(t, acc.CheckPassword("s3cret"))

	// running again updates in place instead of duplicating
	mockPassword(t, "fresher")
	require.NoError(t, cli.run([]string{"admin", "addaccount", "-name", "Alice A.", "-email", "alice@test.cd"}))

	accs, err := cli.accountRepo.QueryAllAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "Alice A.", accs[0].Name)
	assert.Equal(t, account.RoleMember, accs[0].Role)
	assert.True(t, accs[0].CheckPassword("fresher"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	mockPassword(t, "s3cret")
	require.NoError(t, cli.run([]string{"admin", "addaccount", "-name", "Alice", "-email", "alice@test.cd"}))

	mockPassword(t, "newSecret")
	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-email", "alice@test.cd"}))

	acc, err := cli.accountRepo.GetAccountByEmail(context.Background(), "alice@test.cd")
	require.NoError(t, err)
	assert.True(t, acc.CheckPassword("newSecret"))
	assert.False(t, acc.MustChangePassword)
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var called bool
	orig := migrateFunc
	migrateFunc = func(db *sqlx.DB) error { called = true; return nil }
	t.Cleanup(func() { migrateFunc = orig })

	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	assert.True(t, called)
}
