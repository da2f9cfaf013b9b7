package account

import (
	"crypto/subtle"

	"github.com/classeapp/classe/core"
)

// Roles. Wire values predate the Go rewrite and must not change: rows in the
// users table carry them, as does every change event echoed back to us.
const (
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "RESPONSABLE"
	RoleMember     = "ELEVE"
)

var (
	AllRoles = []string{RoleAdmin, RoleSupervisor, RoleMember}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Supervisor", Value: RoleSupervisor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Account is a dashboard identity. The JSON/db tags are the exact wire
// column names of the users table; Password is the stored secret compared
// verbatim on sign-in (a known weakness of the original system, kept for
// wire compatibility - see DESIGN.md).
type Account struct {
	ID                 string `json:"id" db:"id"`
	Name               string `json:"nom" db:"nom"`
	Email              string `json:"email" db:"email"`
	Role               string `json:"role" db:"role"`
	Password           string `json:"password,omitempty" db:"password"`
	MustChangePassword bool   `json:"must_change_password" db:"must_change_password"`
}

// CheckPassword compares a submitted secret against the stored one.
func (a *Account) CheckPassword(pwd string) bool {
	return subtle.ConstantTimeCompare([]byte(a.Password), []byte(pwd)) == 1
}

func (a *Account) IsAdmin() bool      { return a.Role == RoleAdmin }
func (a *Account) IsSupervisor() bool { return a.Role == RoleSupervisor }
func (a *Account) IsMember() bool     { return a.Role == RoleMember }

// CanManageAccounts reports whether the account may create, edit and delete
// other accounts. Admin only.
func (a *Account) CanManageAccounts() bool { return a.IsAdmin() }

// CanManageContent reports whether the account may create and delete
// announcements, exams and polls.
func (a *Account) CanManageContent() bool { return a.IsAdmin() || a.IsSupervisor() }

// Public returns a copy safe for API responses: the stored secret is
// stripped. View state keeps the full row since the change feed carries it.
func (a Account) Public() Account {
	a.Password = ""
	return a
}

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Name               string `json:"nom" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Role               string `json:"role" validate:"required,role"`
	Password           string `json:"password" validate:"required,min=6"`
	MustChangePassword bool   `json:"must_change_password"`
}

func (na *NewAccount) Validate(ctx Checker) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	return ctx.CheckUniqueness(na.Email)
}

// UpdateAccount defines what information may be provided to modify an
// existing Account. The stored secret is changed through the dedicated
// password operations, never here.
type UpdateAccount struct {
	Name  string `json:"nom"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}

func (ua *UpdateAccount) Validate(orig Account, ctx Checker) error {
	name := core.CleanString(ua.Name)
	if name != "" {
		ua.Name = name
	} else {
		ua.Name = orig.Name
	}

	email := core.CleanString(ua.Email, true /* lower */)
	if email != "" {
		ua.Email = email
	} else {
		ua.Email = orig.Email
	}

	if ua.Role == "" {
		ua.Role = orig.Role
	}

	if err := core.Validate.Struct(ua); err != nil {
		return err
	}
	return ctx.CheckUniqueness(ua.Email, orig)
}

// Checker validates cross-account constraints during input validation.
type Checker interface {
	CheckUniqueness(email string, exclAccounts ...Account) error
}
