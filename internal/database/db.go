// Package database persists bundle verdicts so operators can audit past runs.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the verdict archive connection with pooling
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewDB creates a new verdict archive in dataDir
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "proof_verdicts.db")

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One writer at a time is plenty for a per-run archive.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Verdict archive initialized", "path", dbPath)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS verdicts (
			id TEXT PRIMARY KEY,
			dlp_id INTEGER NOT NULL,
			wallet_address TEXT NOT NULL,
			source_file TEXT NOT NULL,
			valid BOOLEAN NOT NULL,
			score REAL NOT NULL,
			authenticity REAL NOT NULL,
			uniqueness REAL NOT NULL,
			quality REAL NOT NULL,
			ownership REAL NOT NULL,
			attributes TEXT, -- JSON attributes payload
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_verdicts_wallet ON verdicts(wallet_address)`,
		`CREATE INDEX IF NOT EXISTS idx_verdicts_created ON verdicts(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_verdict": `INSERT INTO verdicts (
			id, dlp_id, wallet_address, source_file, valid, score,
			authenticity, uniqueness, quality, ownership, attributes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"get_recent_verdicts": `SELECT id, dlp_id, wallet_address, source_file, valid, score,
			authenticity, uniqueness, quality, ownership, attributes, created_at
			FROM verdicts ORDER BY created_at DESC LIMIT ?`,

		"get_verdicts_by_wallet": `SELECT id, dlp_id, wallet_address, source_file, valid, score,
			authenticity, uniqueness, quality, ownership, attributes, created_at
			FROM verdicts WHERE wallet_address = ? ORDER BY created_at DESC`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
