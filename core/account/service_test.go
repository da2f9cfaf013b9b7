package account_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	dummydb "github.com/classeapp/classe/storage/database/dummy"
)

// recordingMailSvc captures outbound messages synchronously.
type recordingMailSvc struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (svc *recordingMailSvc) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = append(svc.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (*account.Service, account.Repository, *recordingMailSvc) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewAccountRepository(db)
	mailSvc := &recordingMailSvc{}
	return account.NewService(repo, mailSvc, nopLogger{}), repo, mailSvc
}

func createAccount(t *testing.T, svc *account.Service, name, email, role string) account.Account {
	t.Helper()
	acc, err := svc.Create(context.Background(), account.NewAccount{
		Name:     name,
		Email:    email,
		Role:     role,
		Password: "s3cret",
	})
	require.NoError(t, err)
	return acc
}

func TestCreateSendsWelcomeEmail(t *testing.T) {
	svc, _, mailSvc := setup(t)

	acc := createAccount(t, svc, "Alice", "alice@school.test", account.RoleAdmin)
	assert.NotEmpty(t, acc.ID)
	require.Len(t, mailSvc.sent, 1)
	assert.Equal(t, "alice@school.test", mailSvc.sent[0].To[0].Address)
}

func TestCheckUniqueness(t *testing.T) {
	svc, _, _ := setup(t)
	createAccount(t, svc, "Alice", "alice@school.test", account.RoleAdmin)

	err := svc.CheckUniqueness("alice@school.test")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.NoError(t, svc.CheckUniqueness("bob@school.test"))
}

func TestUpdateRefusesToDemoteLastAdmin(t *testing.T) {
	svc, _, _ := setup(t)
	admin := createAccount(t, svc, "Alice", "alice@school.test", account.RoleAdmin)

	_, err := svc.Update(context.Background(), admin.ID, account.UpdateAccount{
		Name: admin.Name, Email: admin.Email, Role: account.RoleMember,
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	// with a second admin around the demotion goes through
	createAccount(t, svc, "Bob", "bob@school.test", account.RoleAdmin)
	acc, err := svc.Update(context.Background(), admin.ID, account.UpdateAccount{
		Name: admin.Name, Email: admin.Email, Role: account.RoleMember,
	})
	require.NoError(t, err)
	assert.Equal(t, account.RoleMember, acc.Role)
}

func TestDeleteRefusesLastAdmin(t *testing.T) {
	svc, _, _ := setup(t)
	admin := createAccount(t, svc, "Alice", "alice@school.test", account.RoleAdmin)

	err := svc.Delete(context.Background(), admin.ID)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	createAccount(t, svc, "Bob", "bob@school.test", account.RoleAdmin)
	assert.NoError(t, svc.Delete(context.Background(), admin.ID))
}

func TestChangePasswordNeedsCurrentSecret(t *testing.T) {
	svc, _, _ := setup(t)
	acc := createAccount(t, svc, "Alice", "alice@school.test", account.RoleMember)

	_, err := svc.ChangePassword(context.Background(), acc.ID, "wrong", "newSecret")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	updated, err := svc.ChangePassword(context.Background(), acc.ID, "s3cret", "newSecret")
	require.NoError(t, err)
	assert.True(t, updated.CheckPassword("newSecret"))
}

func TestResetPasswordForcesChange(t *testing.T) {
	svc, _, mailSvc := setup(t)
	acc := createAccount(t, svc, "Alice", "alice@school.test", account.RoleMember)

	reset, err := svc.ResetPassword(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.True(t, reset.MustChangePassword)
	assert.True(t, reset.CheckPassword(core.Conf.TempPassword))
	assert.Len(t, mailSvc.sent, 2, "welcome + reset notification")

	// completing the forced change clears the flag
	set, err := svc.SetPassword(context.Background(), acc.ID, "freshSecret")
	require.NoError(t, err)
	assert.False(t, set.MustChangePassword)
	assert.True(t, set.CheckPassword("freshSecret"))
}

func TestGetByEmailNormalizes(t *testing.T) {
	svc, _, _ := setup(t)
	createAccount(t, svc, "Alice", "alice@school.test", account.RoleMember)

	acc, err := svc.GetByEmail(context.Background(), "  ALICE@school.test ")
	require.NoError(t, err)
	assert.Equal(t, "alice@school.test", acc.Email)
}
