package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/state"
)

type examApi struct {
	svc        *exam.Service
	accountSvc *account.Service
	state      *state.State
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service, accountSvc *account.Service, st *state.State) {
	api := examApi{svc: svc, accountSvc: accountSvc, state: st}

	eg := g.Group("/exams", jwt)
	eg.GET("", api.query)

	mg := eg.Group("", contentManagerMiddleware())
	mg.POST("", api.create)
	mg.DELETE("/:id", api.destroy)
}

// query serves the reconciled view, ordered soonest first.
func (api *examApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.state.Exams())
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	responsible, err := getContextAccount(ctx, api.accountSvc, api.state)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}

	ex, err := api.svc.Create(ctx.Request().Context(), data, responsible)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *examApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}
