package database

import (
	"database/sql"
	"fmt"
	"log"
)

// RunMigrations creates the tables and the change-notification trigger if they do not exist.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	queries := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY,
			full_name TEXT NOT NULL,
			phone VARCHAR(32) NOT NULL,
			guarantor_phone VARCHAR(32) NOT NULL DEFAULT '',
			payment_amount TEXT NOT NULL DEFAULT '',
			original_amount TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			paid_at TIMESTAMP WITH TIME ZONE,
			payment_method VARCHAR(20),
			transfer_to TEXT,
			updated_by TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS day_summaries (
			date DATE PRIMARY KEY,
			profit NUMERIC NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS profit_history (
			date DATE PRIMARY KEY,
			profit NUMERIC NOT NULL DEFAULT 0,
			debt NUMERIC NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS deletion_logs (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL,
			deleted_by TEXT NOT NULL DEFAULT '',
			deleted_at TIMESTAMP WITH TIME ZONE NOT NULL,
			snapshot JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			role VARCHAR(20) NOT NULL DEFAULT 'user'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_created_at ON clients(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_paid_at ON clients(paid_at)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_phone ON clients(phone)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			log.Printf("Error creating tables: %v", err)
			return err
		}
	}

	if err := addClientsNotifyTrigger(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func addClientsNotifyTrigger(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE OR REPLACE FUNCTION notify_clients_changed() RETURNS trigger AS $$
		BEGIN
			IF TG_OP = 'DELETE' THEN
				PERFORM pg_notify('%[1]s', OLD.id::text);
			ELSE
				PERFORM pg_notify('%[1]s', NEW.id::text);
			END IF;
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS clients_changed ON clients;
		CREATE TRIGGER clients_changed
			AFTER INSERT OR UPDATE OR DELETE ON clients
			FOR EACH ROW EXECUTE FUNCTION notify_clients_changed();
	`, ClientsChannel)
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for clients trigger: %v", err)
		return err
	}
	return nil
}
