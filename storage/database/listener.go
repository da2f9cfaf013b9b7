package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/state"
)

// NotifyChannel is the single pg_notify channel the row triggers emit on.
const NotifyChannel = "classe_changes"

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listener turns the store's NOTIFY stream into ChangeEvents. Reconnection
// is handled by lib/pq; after a reconnect the underlying driver re-issues
// LISTEN, so at most a window of events is lost, which the reconciler's
// update-as-insert behavior tolerates.
type Listener struct {
	pql    *pq.Listener
	events chan state.ChangeEvent
	log    core.Logger
}

func NewListener(conf *core.Config, log core.Logger) (*Listener, error) {
	pql := pq.NewListener(DSN(conf), minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Warn("listener: connection event", map[string]interface{}{"event": int(ev), "err": err.Error()})
			}
		})
	if err := pql.Listen(NotifyChannel); err != nil {
		_ = pql.Close()
		return nil, errors.Wrapf(core.ErrRemoteUnavailable, "subscribing to %s: %v", NotifyChannel, err)
	}
	return &Listener{
		pql:    pql,
		events: make(chan state.ChangeEvent, 64),
		log:    log,
	}, nil
}

// Events is the ordered stream of decoded change events.
func (l *Listener) Events() <-chan state.ChangeEvent {
	return l.events
}

// Run decodes notifications until ctx is done, then closes the event
// channel. Undecodable payloads are dropped with a diagnostic; the pipeline
// must not die on one bad notification.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)
	for {
		select {
		case <-ctx.Done():
			return

		case n := <-l.pql.Notify:
			if n == nil {
				// nil notification signals a reconnect; nothing to decode
				continue
			}
			var ev state.ChangeEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				l.log.Warn("listener: dropping undecodable notification", map[string]interface{}{"err": err.Error()})
				continue
			}
			select {
			case l.events <- ev:
			case <-ctx.Done():
				return
			}

		case <-time.After(pingInterval):
			go func() {
				if err := l.pql.Ping(); err != nil {
					l.log.Warn("listener: ping failed", map[string]interface{}{"err": err.Error()})
				}
			}()
		}
	}
}

func (l *Listener) Close() error {
	return l.pql.Close()
}
