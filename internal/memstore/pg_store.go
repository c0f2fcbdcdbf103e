package memstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Environment variable constants
const (
	// Connection string
	EnvPgConnStr = "BRAIN_PGSQL_CN"

	// Connection pool settings
	EnvPgMaxConns     = "BRAIN_PGSQL_MAX_CONNS"
	EnvPgIdleConns    = "BRAIN_PGSQL_IDLE_CONNS"
	EnvPgConnLifetime = "BRAIN_PGSQL_CONN_LIFETIME"

	// Default values
	DefaultMaxConns     = 5
	DefaultIdleConns    = 2
	DefaultConnLifetime = 3600
)

// Table holding one row per named document
const TableDocument = "brain_document"

// PgConfig holds PostgreSQL configuration options.
type PgConfig struct {
	ConnStr      string
	MaxConns     int
	IdleConns    int
	ConnLifetime time.Duration
}

// PgConfigFromEnv builds a PgConfig from environment variables, applying
// defaults for unset pool settings.
func PgConfigFromEnv(connEnv string) PgConfig {
	if connEnv == "" {
		connEnv = EnvPgConnStr
	}
	cfg := PgConfig{
		ConnStr:      os.Getenv(connEnv),
		MaxConns:     DefaultMaxConns,
		IdleConns:    DefaultIdleConns,
		ConnLifetime: DefaultConnLifetime * time.Second,
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPgMaxConns)); err == nil && v > 0 {
		cfg.MaxConns = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPgIdleConns)); err == nil && v > 0 {
		cfg.IdleConns = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPgConnLifetime)); err == nil && v > 0 {
		cfg.ConnLifetime = time.Duration(v) * time.Second
	}
	return cfg
}

// PgStore implements Store using PostgreSQL. The whole document lives in one
// jsonb row; Update runs under a row lock, so concurrent writers serialize
// properly instead of racing on a shared file.
type PgStore struct {
	config          PgConfig
	docName         string
	db              *sql.DB
	createIfMissing bool
	mu              sync.Mutex
}

// PgOption configures a PgStore.
type PgOption func(*PgStore)

// PgCreateIfMissing makes Open insert an empty document row when none
// exists.
func PgCreateIfMissing() PgOption {
	return func(p *PgStore) { p.createIfMissing = true }
}

// NewPgStore creates a Postgres-backed memory store for the named document
// (conventionally "memory").
func NewPgStore(cfg PgConfig, docName string, opts ...PgOption) (*PgStore, error) {
	if cfg.ConnStr == "" {
		return nil, fmt.Errorf("postgres connection string is empty")
	}
	if docName == "" {
		docName = "memory"
	}
	store := &PgStore{config: cfg, docName: docName}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Open connects, applies pool settings and ensures the document table and
// row exist as required.
func (p *PgStore) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	db, err := sql.Open("postgres", p.config.ConnStr)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(p.config.MaxConns)
	db.SetMaxIdleConns(p.config.IdleConns)
	db.SetConnMaxLifetime(p.config.ConnLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name       TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, TableDocument)
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return fmt.Errorf("failed to ensure document table: %w", err)
	}

	p.db = db

	if p.createIfMissing {
		data, err := json.Marshal(NewDocument())
		if err != nil {
			return fmt.Errorf("failed to marshal empty document: %w", err)
		}
		insert := fmt.Sprintf(
			`INSERT INTO %s (name, doc) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			TableDocument)
		if _, err := db.Exec(insert, p.docName, data); err != nil {
			return fmt.Errorf("failed to seed document row: %w", err)
		}
	}

	return nil
}

// Load returns a snapshot of the stored document. A missing row is an
// error: silently continuing with empty state would discard history.
func (p *PgStore) Load() (*Document, error) {
	if p.db == nil {
		return nil, fmt.Errorf("memory store is not open")
	}

	var data []byte
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE name = $1`, TableDocument)
	err := p.db.QueryRow(query, p.docName).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("memory document %q does not exist", p.docName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load memory document: %w", err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse memory document: %w", err)
	}
	return doc, nil
}

// Save replaces the stored document.
func (p *PgStore) Save(doc *Document) error {
	if p.db == nil {
		return fmt.Errorf("memory store is not open")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal memory document: %w", err)
	}
	upsert := fmt.Sprintf(`INSERT INTO %s (name, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		TableDocument)
	if _, err := p.db.Exec(upsert, p.docName, data); err != nil {
		return fmt.Errorf("failed to save memory document: %w", err)
	}
	return nil
}

// Update runs fn on the document inside a transaction with the document row
// locked, so concurrent writers cannot lose each other's appends.
func (p *PgStore) Update(fn func(*Document) error) error {
	if p.db == nil {
		return fmt.Errorf("memory store is not open")
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin update transaction: %w", err)
	}
	defer tx.Rollback()

	var data []byte
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE name = $1 FOR UPDATE`, TableDocument)
	err = tx.QueryRow(query, p.docName).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("memory document %q does not exist", p.docName)
	}
	if err != nil {
		return fmt.Errorf("failed to load memory document for update: %w", err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse memory document: %w", err)
	}

	if err := fn(doc); err != nil {
		return err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal memory document: %w", err)
	}
	update := fmt.Sprintf(`UPDATE %s SET doc = $2, updated_at = now() WHERE name = $1`, TableDocument)
	if _, err := tx.Exec(update, p.docName, out); err != nil {
		return fmt.Errorf("failed to write memory document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit memory update: %w", err)
	}
	return nil
}

// Flush is a no-op: every write goes straight to the database.
func (p *PgStore) Flush() error {
	return nil
}

// Close closes the database connection.
func (p *PgStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Info provides implementation-specific information about the store.
func (p *PgStore) Info() (map[string]string, error) {
	info := map[string]string{
		"implementation": "PgStore",
		"document":       p.docName,
		"table":          TableDocument,
		"max_conns":      fmt.Sprintf("%d", p.config.MaxConns),
	}
	if p.db != nil {
		var updated time.Time
		query := fmt.Sprintf(`SELECT updated_at FROM %s WHERE name = $1`, TableDocument)
		if err := p.db.QueryRow(query, p.docName).Scan(&updated); err == nil {
			info["updated_at"] = updated.Format(time.RFC3339)
		}
	}
	return info, nil
}
