package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/google/uuid"
)

func (s *PostgresStore) SaveDaySummary(ctx context.Context, sum models.DaySummary) error {
	query := `INSERT INTO day_summaries (date, profit, updated_at)
			  VALUES ($1::date, $2, NOW())
			  ON CONFLICT (date) DO UPDATE SET profit = EXCLUDED.profit, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, sum.Date, sum.Profit); err != nil {
		return fmt.Errorf("save day summary %s: %w", sum.Date, err)
	}
	return nil
}

func (s *PostgresStore) ListDaySummaries(ctx context.Context) ([]models.DaySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT to_char(date, 'YYYY-MM-DD'), profit FROM day_summaries ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.DaySummary{}
	for rows.Next() {
		var d models.DaySummary
		if err := rows.Scan(&d.Date, &d.Profit); err != nil {
			return nil, err
		}
		summaries = append(summaries, d)
	}
	return summaries, rows.Err()
}

func (s *PostgresStore) SaveProfitSnapshot(ctx context.Context, snap models.ProfitSnapshot) error {
	query := `INSERT INTO profit_history (date, profit, debt, updated_at)
			  VALUES ($1::date, $2, $3, NOW())
			  ON CONFLICT (date) DO UPDATE
			  SET profit = EXCLUDED.profit, debt = EXCLUDED.debt, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, snap.Date, snap.Profit, snap.Debt); err != nil {
		return fmt.Errorf("save profit snapshot %s: %w", snap.Date, err)
	}
	return nil
}

func (s *PostgresStore) ListProfitSnapshots(ctx context.Context) ([]models.ProfitSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT to_char(date, 'YYYY-MM-DD'), profit, debt FROM profit_history ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snaps := []models.ProfitSnapshot{}
	for rows.Next() {
		var p models.ProfitSnapshot
		if err := rows.Scan(&p.Date, &p.Profit, &p.Debt); err != nil {
			return nil, err
		}
		snaps = append(snaps, p)
	}
	return snaps, rows.Err()
}

func (s *PostgresStore) ClearProfitHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profit_history`)
	return err
}

func (s *PostgresStore) LogDeletion(ctx context.Context, entry *models.DeletionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	// jsonb goes over the wire as text
	var snapshot sql.NullString
	if entry.Client != nil {
		b, err := json.Marshal(entry.Client)
		if err != nil {
			return fmt.Errorf("marshal deleted client: %w", err)
		}
		snapshot = sql.NullString{String: string(b), Valid: true}
	}

	query := `INSERT INTO deletion_logs (id, client_id, deleted_by, deleted_at, snapshot)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.ClientID, entry.DeletedBy, entry.DeletedAt, snapshot)
	return err
}

func (s *PostgresStore) ListDeletions(ctx context.Context) ([]*models.DeletionLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, deleted_by, deleted_at, snapshot FROM deletion_logs ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*models.DeletionLog{}
	for rows.Next() {
		entry := &models.DeletionLog{}
		var snapshot []byte
		if err := rows.Scan(&entry.ID, &entry.ClientID, &entry.DeletedBy, &entry.DeletedAt, &snapshot); err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			entry.Client = &models.Client{}
			if err := json.Unmarshal(snapshot, entry.Client); err != nil {
				return nil, fmt.Errorf("decode deletion snapshot %s: %w", entry.ID, err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

