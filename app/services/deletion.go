package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type pendingDelete struct {
	id        string
	actor     string
	deadline  time.Time
	timer     *time.Timer
	cancelled bool
}

// DeleteScheduler removes client records after an undo window.
//
// At most one delete is pending. Scheduling another one commits the pending
// delete right away, and Stop commits whatever is still waiting.
type DeleteScheduler struct {
	store  database.Store
	window time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending *pendingDelete
	stopped bool
	wg      sync.WaitGroup
}

func NewDeleteScheduler(store database.Store, window time.Duration, logger *zap.Logger) *DeleteScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeleteScheduler{store: store, window: window, logger: logger, now: time.Now}
}

// Window is the undo period applied to each scheduled delete.
func (d *DeleteScheduler) Window() time.Duration { return d.window }

// Schedule arms the delete of id and returns the moment it becomes final.
// With a zero window, or after Stop, the record is removed before Schedule returns.
func (d *DeleteScheduler) Schedule(ctx context.Context, id, actor string) (time.Time, error) {
	if _, err := d.store.GetClient(ctx, id); err != nil {
		return time.Time{}, err
	}

	d.mu.Lock()
	if d.window <= 0 || d.stopped {
		d.mu.Unlock()
		return d.now(), d.commit(ctx, id, actor)
	}
	if d.pending != nil && d.pending.id == id {
		deadline := d.pending.deadline
		d.mu.Unlock()
		return deadline, nil
	}

	prev := d.pending
	p := &pendingDelete{id: id, actor: actor, deadline: d.now().Add(d.window)}
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.window, func() { d.fire(p) })
	d.pending = p
	d.mu.Unlock()

	if prev != nil && prev.timer.Stop() {
		defer d.wg.Done()
		if err := d.commit(ctx, prev.id, prev.actor); err != nil {
			d.logger.Error("commit replaced delete", zap.String("client_id", prev.id), zap.Error(err))
		}
	}
	return p.deadline, nil
}

// Cancel restores id if its delete is still pending.
func (d *DeleteScheduler) Cancel(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.pending
	if p == nil || p.id != id {
		return false
	}
	p.cancelled = true
	d.pending = nil
	if p.timer.Stop() {
		d.wg.Done()
	}
	d.logger.Info("delete cancelled", zap.String("client_id", id))
	return true
}

// Pending reports the delete waiting for its window to pass, if any.
func (d *DeleteScheduler) Pending() (id string, deadline time.Time, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return "", time.Time{}, false
	}
	return d.pending.id, d.pending.deadline, true
}

// Stop commits the pending delete and waits for running commits to finish.
func (d *DeleteScheduler) Stop() {
	d.mu.Lock()
	d.stopped = true
	p := d.pending
	d.pending = nil
	d.mu.Unlock()

	if p != nil && p.timer.Stop() {
		if err := d.commit(context.Background(), p.id, p.actor); err != nil {
			d.logger.Error("commit pending delete on stop", zap.String("client_id", p.id), zap.Error(err))
		}
		d.wg.Done()
	}
	d.wg.Wait()
}

func (d *DeleteScheduler) fire(p *pendingDelete) {
	defer d.wg.Done()

	d.mu.Lock()
	if p.cancelled {
		d.mu.Unlock()
		return
	}
	if d.pending == p {
		d.pending = nil
	}
	d.mu.Unlock()

	if err := d.commit(context.Background(), p.id, p.actor); err != nil {
		d.logger.Error("delayed delete failed", zap.String("client_id", p.id), zap.Error(err))
	}
}

// commit removes the record and writes the audit entry with its last state.
func (d *DeleteScheduler) commit(ctx context.Context, id, actor string) error {
	rec, err := d.store.GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			d.logger.Warn("client already removed", zap.String("client_id", id))
			return nil
		}
		return fmt.Errorf("load client %s: %w", id, err)
	}
	if err := d.store.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}

	entry := &models.DeletionLog{
		ID:        uuid.NewString(),
		ClientID:  id,
		DeletedBy: actor,
		DeletedAt: d.now(),
		Client:    rec,
	}
	if err := d.store.LogDeletion(ctx, entry); err != nil {
		d.logger.Error("write deletion log", zap.String("client_id", id), zap.Error(err))
	}
	d.logger.Info("client deleted", zap.String("client_id", id), zap.String("by", actor))
	return nil
}
