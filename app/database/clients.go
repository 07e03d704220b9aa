package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostgresStore keeps the client collection and its side tables in PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	dsn    string
	logger *zap.Logger
}

func NewPostgresStore(db *sql.DB, dsn string, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, dsn: dsn, logger: logger}
}

func (s *PostgresStore) DB() *sql.DB { return s.db }

const clientColumns = `id, full_name, phone, guarantor_phone, payment_amount, original_amount,
	status, comment, created_at, paid_at, payment_method, transfer_to, updated_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	c := &models.Client{}
	var original, method, transferTo sql.NullString
	var paidAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.FullName, &c.Phone, &c.GuarantorPhone, &c.PaymentAmount, &original,
		&c.Status, &c.Comment, &c.CreatedAt, &paidAt, &method, &transferTo, &c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	c.OriginalAmount = original.String
	c.PaymentMethod = models.PaymentMethod(method.String)
	c.TransferTo = transferTo.String
	if paidAt.Valid {
		t := paidAt.Time
		c.PaidAt = &t
	}
	return c, nil
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []*models.Client{} // Initialize to empty slice for non-null JSON
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// validID reports whether id can match the uuid primary key at all.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *PostgresStore) GetClient(ctx context.Context, id string) (*models.Client, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) CreateClient(ctx context.Context, c *models.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.FullName, c.Phone, c.GuarantorPhone, c.PaymentAmount, nullString(c.OriginalAmount),
		string(c.Status), c.Comment, c.CreatedAt, c.PaidAt, nullString(string(c.PaymentMethod)),
		nullString(c.TransferTo), c.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, id string, patch models.Patch) error {
	if !validID(id) {
		return ErrNotFound
	}
	query, args, err := buildClientUpdate(id, patch)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update client %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// nullableColumns are stored as NULL when a patch clears them; the rest become ''.
var nullableColumns = map[models.Field]bool{
	models.FieldOriginalAmount: true,
	models.FieldPaymentMethod:  true,
	models.FieldTransferTo:     true,
	models.FieldPaidAt:         true,
}

// buildClientUpdate turns a patch into a single UPDATE statement. Columns are
// emitted in PatchableFields order so the statement is deterministic.
func buildClientUpdate(id string, patch models.Patch) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, errors.New("empty patch")
	}
	if err := patch.Validate(); err != nil {
		return "", nil, err
	}

	var sets []string
	var args []any
	for _, f := range models.PatchableFields {
		if !patch.Has(f) {
			continue
		}
		var value any
		if f == models.FieldPaidAt {
			t, _ := patch.TimeValue(f)
			if t != nil {
				value = *t
			}
		} else {
			str, null, _ := patch.StringValue(f)
			switch {
			case null && nullableColumns[f]:
				value = nil
			default:
				value = str
			}
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE clients SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	return query, args, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
