// Package postgres provides the Postgres-backed vacancy document store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/hh-vacancy-crawler/internal/crawler"
)

// DefaultTable holds the listing documents when no table is configured.
const DefaultTable = "vacancies"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for listing documents.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// VacancyStore keeps one JSONB document per (listing id, entry date).
type VacancyStore struct {
	pool  pool
	table string
}

// NewVacancyStore connects to Postgres using cfg.
func NewVacancyStore(ctx context.Context, cfg Config) (*VacancyStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &VacancyStore{pool: p, table: table}, nil
}

// NewVacancyStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewVacancyStoreWithPool(p pool, table string) (*VacancyStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &VacancyStore{pool: p, table: table}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// EnsureSchema creates the documents table and its lookup index if missing.
func (s *VacancyStore) EnsureSchema(ctx context.Context) error {
	createTable := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	vacancy_id  text        NOT NULL,
	entry_date  text        NOT NULL,
	area_name   text        NOT NULL DEFAULT '',
	document    jsonb       NOT NULL,
	inserted_at timestamptz NOT NULL DEFAULT now()
)`, s.table)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	createIndex := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_vacancy_id_entry_date_idx ON %s (vacancy_id, entry_date)`,
		s.table, s.table,
	)
	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("create index on %s: %w", s.table, err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *VacancyStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Exists reports whether a document with the id and entry date is stored.
func (s *VacancyStore) Exists(ctx context.Context, id, entryDate string) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE vacancy_id = $1 AND entry_date = $2)`,
		s.table,
	)
	var found bool
	if err := s.pool.QueryRow(ctx, query, id, entryDate).Scan(&found); err != nil {
		return false, fmt.Errorf("lookup vacancy %s: %w", id, err)
	}
	return found, nil
}

// Insert writes the full listing as a JSONB document.
func (s *VacancyStore) Insert(ctx context.Context, vacancy crawler.Vacancy) error {
	id, ok := vacancy.ID()
	if !ok {
		return fmt.Errorf("vacancy id is required")
	}
	document, err := json.Marshal(vacancy)
	if err != nil {
		return fmt.Errorf("marshal vacancy %s: %w", id, err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (vacancy_id, entry_date, area_name, document) VALUES ($1, $2, $3, $4)`,
		s.table,
	)
	if _, err := s.pool.Exec(ctx, query, id, vacancy.EntryDate(), vacancy.AreaName(), document); err != nil {
		return fmt.Errorf("insert vacancy %s: %w", id, err)
	}
	return nil
}
