package echoapi

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/state"
)

type dashboardApi struct {
	state *state.State
	hub   *Hub
	log   core.Logger
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, st *state.State, hub *Hub, log core.Logger) {
	api := dashboardApi{state: st, hub: hub, log: log}

	g.GET("/dashboard", api.snapshot, jwt)

	// browsers cannot set headers on websocket upgrades; the token rides the
	// query string instead
	wsJWT := appJWTConfig
	wsJWT.TokenLookup = "query:token"
	g.GET("/dashboard/ws", api.subscribe, middleware.JWTWithConfig(wsJWT))
}

// snapshot returns the whole reconciled view in one payload, stored secrets
// stripped.
func (api *dashboardApi) snapshot(ctx echo.Context) error {
	snap := api.state.Snapshot()
	for i := range snap.Accounts {
		snap.Accounts[i] = snap.Accounts[i].Public()
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *dashboardApi) subscribe(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	conn, err := websocket.Accept(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "accepting websocket")
	}

	client := &wsClient{
		hub:       api.hub,
		conn:      conn,
		send:      make(chan []byte, 16),
		accountID: claims.Subject,
	}
	api.hub.register <- client

	go client.writePump()
	client.readPump()
	return nil
}
