package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

// Change is the payload the notify trigger sends for every row change.
type Change struct {
	Table  string          `json:"table"`
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

// Broadcaster receives encoded change events.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// Listener relays Postgres NOTIFY payloads from one channel to a Broadcaster.
type Listener struct {
	dsn     string
	channel string
	minWait time.Duration
	maxWait time.Duration
	out     Broadcaster
	handler func(Change)
}

func NewListener(dsn, channel string, minWait, maxWait time.Duration, out Broadcaster) *Listener {
	if minWait <= 0 {
		minWait = 10 * time.Second
	}
	if maxWait < minWait {
		maxWait = time.Minute
	}
	return &Listener{dsn: dsn, channel: channel, minWait: minWait, maxWait: maxWait, out: out}
}

// OnChange registers an extra in-process observer for decoded changes.
func (l *Listener) OnChange(fn func(Change)) {
	l.handler = fn
}

// Run listens until ctx is cancelled. pq.Listener reconnects on its own.
func (l *Listener) Run(ctx context.Context) error {
	pl := pq.NewListener(l.dsn, l.minWait, l.maxWait, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			nuts.L.Warnf("[Realtime] Listener connection problem: %v", err)
		case pq.ListenerEventReconnected:
			nuts.L.Infof("[Realtime] Listener reconnected")
		}
	})
	defer pl.Close()

	if err := pl.Listen(l.channel); err != nil {
		return err
	}
	nuts.L.Infof("[Realtime] Listening on channel %s", l.channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-pl.Notify:
			l.handle(n)
		case <-time.After(90 * time.Second):
			go pl.Ping()
		}
	}
}

func (l *Listener) handle(n *pq.Notification) {
	// nil after a reconnect; events in the gap are lost
	if n == nil {
		return
	}
	var change Change
	if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
		nuts.L.Warnf("[Realtime] Ignoring malformed notification on %s: %v", n.Channel, err)
		return
	}
	if l.handler != nil {
		l.handler(change)
	}
	l.out.Broadcast([]byte(n.Extra))
}
