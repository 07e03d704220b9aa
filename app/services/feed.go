package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"go.uber.org/zap"
)

// Snapshot is the full client collection at one moment. Subscribers share the
// records and must not modify them.
type Snapshot struct {
	Clients []*models.Client
	At      time.Time
}

// Feed fans collection snapshots out to subscribers. A slow subscriber only
// ever sees the latest snapshot.
type Feed struct {
	store  database.Store
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[chan Snapshot]struct{}
	last   *Snapshot
	closed bool
}

func NewFeed(store database.Store, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{store: store, logger: logger, subs: make(map[chan Snapshot]struct{})}
}

// Subscribe returns a channel that receives the current snapshot, when there is
// one, and every later one. cancel closes the channel.
func (f *Feed) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	f.subs[ch] = struct{}{}
	if f.last != nil {
		ch <- *f.last
	}

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close ends every subscription. Later subscribers get a closed channel.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for ch := range f.subs {
		delete(f.subs, ch)
		close(ch)
	}
}

// Publish replaces the latest snapshot and delivers it to every subscriber.
func (f *Feed) Publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.last = &s
	for ch := range f.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Latest returns the last published snapshot.
func (f *Feed) Latest() (Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return Snapshot{}, false
	}
	return *f.last, true
}

// Refresh reloads the collection and publishes it.
func (f *Feed) Refresh(ctx context.Context) error {
	clients, err := f.store.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("refresh feed: %w", err)
	}
	f.Publish(Snapshot{Clients: clients, At: time.Now()})
	return nil
}

// Run publishes a fresh snapshot after every store change until ctx is done.
func (f *Feed) Run(ctx context.Context) error {
	changes, err := f.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch clients: %w", err)
	}
	if err := f.Refresh(ctx); err != nil {
		f.logger.Error("initial snapshot", zap.Error(err))
	}
	f.logger.Info("client feed started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := f.Refresh(ctx); err != nil && ctx.Err() == nil {
				f.logger.Error("snapshot after change", zap.Error(err))
			}
		}
	}
}
