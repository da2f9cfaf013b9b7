package echoapi

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/state"
)

func recv(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestHubBroadcastsAppliedEvents(t *testing.T) {
	hub := NewHub(nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c1 := &wsClient{hub: hub, send: make(chan []byte, 1), accountID: "u1"}
	c2 := &wsClient{hub: hub, send: make(chan []byte, 1), accountID: "u2"}
	hub.register <- c1
	hub.register <- c2

	hub.BroadcastEvent(state.ChangeEvent{Type: state.EventInsert, Table: state.TablePolls})

	for _, c := range []*wsClient{c1, c2} {
		var env wsEnvelope
		require.NoError(t, json.Unmarshal(recv(t, c.send), &env))
		assert.Equal(t, "change", env.Kind)
		assert.Equal(t, state.TablePolls, env.Event.Table)
	}
}

func TestHubTargetsSessionUpdates(t *testing.T) {
	hub := NewHub(nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	affected := &wsClient{hub: hub, send: make(chan []byte, 1), accountID: "u1"}
	other := &wsClient{hub: hub, send: make(chan []byte, 1), accountID: "u2"}
	hub.register <- affected
	hub.register <- other

	hub.AccountChanged(account.Account{ID: "u1", Role: account.RoleAdmin, Password: "s3cret"})

	data := recv(t, affected.send)
	var env wsEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "session", env.Kind)
	assert.Equal(t, account.RoleAdmin, env.Account.Role)
	assert.Empty(t, env.Account.Password, "secrets never go down the wire")

	select {
	case <-other.send:
		t.Fatal("unaffected session must not receive the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDisconnectsDeletedAccounts(t *testing.T) {
	hub := NewHub(nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &wsClient{hub: hub, send: make(chan []byte, 1), accountID: "u1"}
	hub.register <- client

	hub.AccountDeleted("u1")

	var env wsEnvelope
	require.NoError(t, json.Unmarshal(recv(t, client.send), &env))
	assert.Equal(t, "logout", env.Kind)

	// channel is closed once the logout message is drained
	_, open := <-client.send
	assert.False(t, open)
}
