package config

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store        string         `yaml:"store"`
	DatabaseURL  string         `yaml:"database_url"`
	Port         string         `yaml:"port"`
	JWTSecret    string         `yaml:"jwt_secret"`
	Timezone     string         `yaml:"timezone"`
	UndoWindow   time.Duration  `yaml:"undo_delete_window"`
	ReportAt     string         `yaml:"report_at"`
	Recipients   []string       `yaml:"recipients"`
	TemplatesDir string         `yaml:"templates_dir"`
	Debug        bool           `yaml:"debug"`
	Telegram     TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Enabled reports whether the daily report should go to Telegram.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Store:        StorePostgres,
		DatabaseURL:  "host=localhost port=5432 user=postgres dbname=collections sslmode=disable",
		Port:         "8080",
		JWTSecret:    "collections-secret-key", // Default for development
		Timezone:     "Europe/Moscow",
		UndoWindow:   5 * time.Second,
		ReportAt:     "20:05",
		Recipients:   []string{"Муслим", "Магомед", "Сафаи"},
		TemplatesDir: "./app/templates",
	}
}

// Load reads the optional YAML file at path, the .env file and the environment,
// in that order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Config file %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("TZ"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("UNDO_DELETE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UNDO_DELETE_WINDOW: %w", err)
		}
		c.UndoWindow = d
	}
	if v := os.Getenv("REPORT_AT"); v != "" {
		c.ReportAt = v
	}
	if v := os.Getenv("RECIPIENTS"); v != "" {
		var names []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				names = append(names, p)
			}
		}
		if len(names) > 0 {
			c.Recipients = names
		}
	}
	if v := os.Getenv("TEMPLATES_DIR"); v != "" {
		c.TemplatesDir = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = v == "true" || v == "1"
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// Validate checks the values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.UndoWindow < 0 {
		return errors.New("undo_delete_window must not be negative")
	}
	if _, _, err := c.ReportClock(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone, falling back to UTC+3.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: Failed to load %s location, falling back to UTC+3: %v", c.Timezone, err)
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// ReportClock parses ReportAt ("HH:MM").
func (c *Config) ReportClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", c.ReportAt)
	if err != nil {
		return 0, 0, fmt.Errorf("report_at %q: expected HH:MM", c.ReportAt)
	}
	return t.Hour(), t.Minute(), nil
}

// OpenDB opens and pings the PostgreSQL database.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
