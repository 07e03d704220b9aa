package database

import (
	"context"
	"errors"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the document store behind the client views. Writes are last-write-wins.
type Store interface {
	ListClients(ctx context.Context) ([]*models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, id string, patch models.Patch) error
	DeleteClient(ctx context.Context, id string) error

	SaveDaySummary(ctx context.Context, s models.DaySummary) error
	ListDaySummaries(ctx context.Context) ([]models.DaySummary, error)
	SaveProfitSnapshot(ctx context.Context, s models.ProfitSnapshot) error
	ListProfitSnapshots(ctx context.Context) ([]models.ProfitSnapshot, error)
	ClearProfitHistory(ctx context.Context) error
	LogDeletion(ctx context.Context, entry *models.DeletionLog) error
	ListDeletions(ctx context.Context) ([]*models.DeletionLog, error)

	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	GetRole(ctx context.Context, uid string) (models.Role, error)
	SetRole(ctx context.Context, uid string, role models.Role) error

	// Watch emits a signal after every change to the clients collection until ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
