package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	clients   map[string]*models.Client
	summaries map[string]models.DaySummary
	profits   map[string]models.ProfitSnapshot
	deletions []*models.DeletionLog
	users     map[string]*models.User // by lower-cased email
	roles     map[string]models.Role
	watchers  map[chan struct{}]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:   make(map[string]*models.Client),
		summaries: make(map[string]models.DaySummary),
		profits:   make(map[string]models.ProfitSnapshot),
		users:     make(map[string]*models.User),
		roles:     make(map[string]models.Role),
		watchers:  make(map[chan struct{}]struct{}),
	}
}

// changed must be called with mu held.
func (m *MemoryStore) changed() {
	for ch := range m.watchers {
		notify(ch)
	}
}

func (m *MemoryStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients := make([]*models.Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c.Clone())
	}
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].CreatedAt.Equal(clients[j].CreatedAt) {
			return clients[i].ID < clients[j].ID
		}
		return clients[i].CreatedAt.Before(clients[j].CreatedAt)
	})
	return clients, nil
}

func (m *MemoryStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryStore) CreateClient(ctx context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if _, exists := m.clients[c.ID]; exists {
		return fmt.Errorf("client %s already exists", c.ID)
	}
	m.clients[c.ID] = c.Clone()
	m.changed()
	return nil
}

func (m *MemoryStore) UpdateClient(ctx context.Context, id string, patch models.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[id]
	if !ok {
		return ErrNotFound
	}
	next := c.Clone()
	if err := next.Apply(patch); err != nil {
		return err
	}
	m.clients[id] = next
	m.changed()
	return nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[id]; !ok {
		return ErrNotFound
	}
	delete(m.clients, id)
	m.changed()
	return nil
}

func (m *MemoryStore) SaveDaySummary(ctx context.Context, s models.DaySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[s.Date] = s
	return nil
}

func (m *MemoryStore) ListDaySummaries(ctx context.Context) ([]models.DaySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DaySummary, 0, len(m.summaries))
	for _, s := range m.summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *MemoryStore) SaveProfitSnapshot(ctx context.Context, s models.ProfitSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profits[s.Date] = s
	return nil
}

func (m *MemoryStore) ListProfitSnapshots(ctx context.Context) ([]models.ProfitSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ProfitSnapshot, 0, len(m.profits))
	for _, s := range m.profits {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *MemoryStore) ClearProfitHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profits = make(map[string]models.ProfitSnapshot)
	return nil
}

func (m *MemoryStore) LogDeletion(ctx context.Context, entry *models.DeletionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	cp := *entry
	if entry.Client != nil {
		cp.Client = entry.Client.Clone()
	}
	m.deletions = append(m.deletions, &cp)
	return nil
}

func (m *MemoryStore) ListDeletions(ctx context.Context) ([]*models.DeletionLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.DeletionLog, len(m.deletions))
	for i := range m.deletions {
		out[len(m.deletions)-1-i] = m.deletions[i]
	}
	return out, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := m.users[key]; exists {
		return fmt.Errorf("create user %s: email already registered", u.Email)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	cp := *u
	m.users[key] = &cp
	return nil
}

func (m *MemoryStore) GetRole(ctx context.Context, uid string) (models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[uid]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func (m *MemoryStore) SetRole(ctx context.Context, uid string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[uid] = role
	return nil
}

func (m *MemoryStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer func() {
			m.mu.Lock()
			delete(m.watchers, ch)
			m.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				notify(out)
			}
		}
	}()
	return out, nil
}
