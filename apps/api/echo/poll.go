package echoapi

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/poll"
	"github.com/classeapp/classe/core/state"
)

type pollApi struct {
	svc        *poll.Service
	accountSvc *account.Service
	state      *state.State
}

func registerPollAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *poll.Service, accountSvc *account.Service, st *state.State) {
	api := pollApi{svc: svc, accountSvc: accountSvc, state: st}

	pg := g.Group("/polls", jwt)
	pg.GET("", api.query)
	pg.POST("/:id/vote", api.vote)

	mg := pg.Group("", contentManagerMiddleware())
	mg.POST("", api.create)
	mg.DELETE("/:id", api.destroy)
}

// query serves the reconciled view rendered for the requesting account:
// per-option percentages, whether they already voted, and expiry status.
func (api *pollApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	polls := api.state.Polls()
	now := time.Now()
	views := make([]PollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, newPollView(p, claims.Subject, now))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *pollApi) create(ctx echo.Context) error {
	var data poll.NewPoll
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPoll")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating poll")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *pollApi) vote(ctx echo.Context) error {
	var data VoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VoteRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.CastVote(ctx.Request().Context(), ctx.Param("id"), data.OptionID, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "casting vote")
	}
	return ctx.JSON(http.StatusOK, newPollView(p, claims.Subject, time.Now()))
}

func (api *pollApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting poll")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	VoteRequest struct {
		OptionID string `json:"option_id" validate:"required"`
	}

	OptionView struct {
		ID      string `json:"id"`
		Text    string `json:"text"`
		Votes   int    `json:"votes"`
		Percent int    `json:"percent"`
	}

	PollView struct {
		ID         string       `json:"id"`
		Title      string       `json:"titre"`
		Anonymous  bool         `json:"anon"`
		CreatedAt  time.Time    `json:"date_creation"`
		ExpiresAt  time.Time    `json:"date_expiration"`
		Options    []OptionView `json:"options"`
		TotalVotes int          `json:"total_votes"`
		HasVoted   bool         `json:"has_voted"`
		Expired    bool         `json:"expired"`
		ExpiresIn  string       `json:"expires_in"`
	}
)

func (vr *VoteRequest) Validate() error {
	return core.Validate.Struct(vr)
}

func newPollView(p poll.Poll, accountID string, now time.Time) PollView {
	total := p.TotalVotes()
	opts := make([]OptionView, 0, len(p.Options))
	for _, opt := range p.Options {
		opts = append(opts, OptionView{
			ID:      opt.ID,
			Text:    opt.Text,
			Votes:   opt.Votes,
			Percent: poll.Percent(opt.Votes, total),
		})
	}
	return PollView{
		ID:         p.ID,
		Title:      p.Title,
		Anonymous:  p.Anonymous,
		CreatedAt:  p.CreatedAt,
		ExpiresAt:  p.ExpiresAt,
		Options:    opts,
		TotalVotes: total,
		HasVoted:   p.HasVoted(accountID),
		Expired:    p.IsExpired(now),
		ExpiresIn:  humanize.Time(p.ExpiresAt),
	}
}
