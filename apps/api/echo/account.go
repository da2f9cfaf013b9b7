package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/state"
)

type accountApi struct {
	svc   *account.Service
	state *state.State
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *account.Service, st *state.State) {
	api := accountApi{svc: svc, state: st}

	ag := g.Group("/accounts")

	// un-authed endpoints
	ag.POST("/login", api.login)

	// authed endpoints
	authed := ag.Group("", jwt)
	authed.POST("/token-refresh", api.refreshToken)
	authed.GET("/me", api.me)
	authed.PUT("/me/password", api.changePassword)

	// admin endpoints
	adm := authed.Group("", adminMiddleware())
	adm.POST("", api.create)
	adm.GET("", api.query)
	adm.GET("/roles", api.queryRoles)
	adm.PUT("/:id", api.update)
	adm.DELETE("/:id", api.destroy)
	adm.POST("/:id/reset-password", api.resetPassword)
}

// Handlers

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	acc, err := api.svc.GetByEmail(ctx.Request().Context(), data.Email)
	if err != nil {
		return errors.Wrap(err, "finding account by email")
	}
	pub := acc.Public()
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: &pub})
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.state)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := getContextAccount(ctx, api.svc, api.state)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return ctx.JSON(http.StatusOK, acc.Public())
}

// changePassword is both the self-service path (current password required)
// and the forced-change path after an admin reset (the temporary password is
// the current one; completing it clears the must-change flag).
func (api *accountApi) changePassword(ctx echo.Context) error {
	var data ChangePasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePasswordRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	acc, err := getContextAccount(ctx, api.svc, api.state)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}

	if acc.MustChangePassword {
		if !acc.CheckPassword(data.CurrentPassword) {
			return core.NewValidationError(nil, core.FieldError{Field: "current_password", Error: "current password is incorrect"})
		}
		acc, err = api.svc.SetPassword(ctx.Request().Context(), acc.ID, data.NewPassword)
	} else {
		acc, err = api.svc.ChangePassword(ctx.Request().Context(), acc.ID, data.CurrentPassword, data.NewPassword)
	}
	if err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, acc.Public())
}

func (api *accountApi) create(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	acc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating account")
	}
	return ctx.JSON(http.StatusCreated, acc.Public())
}

func (api *accountApi) query(ctx echo.Context) error {
	accs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	out := make([]account.Account, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.Public())
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *accountApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, account.Roles)
}

func (api *accountApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding account by ID")
	}

	var data account.UpdateAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAccount")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	acc, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating account")
	}
	return ctx.JSON(http.StatusOK, acc.Public())
}

func (api *accountApi) destroy(ctx echo.Context) error {
	acc, err := getContextAccount(ctx, api.svc, api.state)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	// ctxAccount cannot delete themselves
	if acc.ID == ctx.Param("id") {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) resetPassword(ctx echo.Context) error {
	acc, err := api.svc.ResetPassword(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, acc.Public())
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string           `json:"token"`
		Account *account.Account `json:"account,omitempty"`
	}

	ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (cp *ChangePasswordRequest) Validate() error {
	return core.Validate.Struct(cp)
}
