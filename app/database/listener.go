package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ClientsChannel is the NOTIFY channel fired by the clients trigger.
const ClientsChannel = "clients_changed"

// Watch listens on ClientsChannel. Notifications are coalesced: a slow reader sees
// one pending signal no matter how many rows changed.
func (s *PostgresStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(s.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn("clients listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(ClientsChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", ClientsChannel, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer listener.Close()

		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-listener.Notify:
				if !ok {
					return
				}
				// A nil notification follows a reconnect, which may have dropped events.
				notify(out)
			case <-ping.C:
				go func() {
					if err := listener.Ping(); err != nil {
						s.logger.Debug("clients listener ping", zap.Error(err))
					}
				}()
			}
		}
	}()
	return out, nil
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
