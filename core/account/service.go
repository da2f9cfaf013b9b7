package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/classeapp/classe/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("an account with this email already exists")
	ErrLastAdmin   = errors.New("at least one admin account is required")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exclAccounts ...Account) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		QueryAllAccounts(ctx context.Context) ([]Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		DeleteAccount(ctx context.Context, id string) error
		CountAdmins(ctx context.Context) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, log: log}
}

func (svc *Service) CheckUniqueness(email string, exclAccounts ...Account) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclAccounts...); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	acc := Account{
		ID:                 uuid.New().String(),
		Name:               na.Name,
		Email:              na.Email,
		Role:               na.Role,
		Password:           na.Password,
		MustChangePassword: na.MustChangePassword,
	}
	acc, err := svc.repo.CreateAccount(ctx, acc)
	if err != nil {
		return Account{}, err
	}
	svc.sendWelcomeEmail(acc)
	return acc, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Account, error) {
	return svc.repo.QueryAllAccounts(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAccount) (Account, error) {
	orig, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}

	// demoting the last admin would lock everyone out of account management
	if orig.IsAdmin() && ua.Role != RoleAdmin {
		if err := svc.checkLastAdmin(ctx); err != nil {
			return Account{}, err
		}
	}

	acc := orig
	acc.Name = ua.Name
	acc.Email = ua.Email
	acc.Role = ua.Role
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if acc.IsAdmin() {
		if err := svc.checkLastAdmin(ctx); err != nil {
			return err
		}
	}
	return svc.repo.DeleteAccount(ctx, id)
}

// ChangePassword is the self-service path: the current secret must match.
func (svc *Service) ChangePassword(ctx context.Context, id, current, newPwd string) (Account, error) {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !acc.CheckPassword(current) {
		return Account{}, core.NewValidationError(nil, core.FieldError{Field: "current_password", Error: "current password is incorrect"})
	}
	acc.Password = newPwd
	return svc.repo.UpdateAccount(ctx, acc)
}

// SetPassword is the forced-change path taken on first sign-in after a
// reset; it clears the must-change flag.
func (svc *Service) SetPassword(ctx context.Context, id, newPwd string) (Account, error) {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	acc.Password = newPwd
	acc.MustChangePassword = false
	return svc.repo.UpdateAccount(ctx, acc)
}

// ResetPassword assigns the configured temporary secret and forces a change
// on next sign-in. The account is notified by email.
func (svc *Service) ResetPassword(ctx context.Context, id string) (Account, error) {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	acc.Password = core.Conf.TempPassword
	acc.MustChangePassword = true
	acc, err = svc.repo.UpdateAccount(ctx, acc)
	if err != nil {
		return Account{}, err
	}
	svc.sendPasswordResetEmail(acc)
	return acc, nil
}

func (svc *Service) checkLastAdmin(ctx context.Context) error {
	n, err := svc.repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return core.NewValidationError(ErrLastAdmin, core.FieldError{Field: "role", Error: ErrLastAdmin.Error()})
	}
	return nil
}

func (svc *Service) sendWelcomeEmail(acc Account) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acc.Name, Address: acc.Email}},
		Subject: fmt.Sprintf("Welcome to %s", core.Conf.AppName),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour account has been created. Sign in at %s with this email address.\n",
			acc.Name, core.Conf.FrontendBaseURL,
		),
	})
}

func (svc *Service) sendPasswordResetEmail(acc Account) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acc.Name, Address: acc.Email}},
		Subject: fmt.Sprintf("%s - your password has been reset", core.Conf.AppName),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nAn administrator has reset your password. Sign in at %s with the temporary password you were given; you will be asked to choose a new one.\n",
			acc.Name, core.Conf.FrontendBaseURL,
		),
	})
}
