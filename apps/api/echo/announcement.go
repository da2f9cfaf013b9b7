package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/state"
)

type announcementApi struct {
	svc        *announcement.Service
	accountSvc *account.Service
	state      *state.State
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *announcement.Service, accountSvc *account.Service, st *state.State) {
	api := announcementApi{svc: svc, accountSvc: accountSvc, state: st}

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.query)

	mg := ag.Group("", contentManagerMiddleware())
	mg.POST("", api.create)
	mg.DELETE("/:id", api.destroy)
}

// query serves the reconciled view, not the store: the feed keeps it current
// and ordered most recent first.
func (api *announcementApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.state.Announcements())
}

func (api *announcementApi) create(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	creator, err := getContextAccount(ctx, api.accountSvc, api.state)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}

	ann, err := api.svc.Create(ctx.Request().Context(), data, creator)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
