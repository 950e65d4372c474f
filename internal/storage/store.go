package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates an unknown run id.
var ErrNotFound = errors.New("storage: run not found")

// DBName is the registry file inside the data directory.
const DBName = "runs.db"

// Run is one registry entry. Config holds the run's settings as written
// by the caller; Metrics the values reported at the end of sampling.
type Run struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	NumBP      int                `json:"n_bp"`
	NumStep    int                `json:"n_step"`
	Force      float64            `json:"force"`
	TargetLink *float64           `json:"target_link,omitempty"`
	AcceptRate float64            `json:"accept_rate"`
	Output     string             `json:"output"`
	Seed       int64              `json:"seed"`
	Config     json.RawMessage    `json:"config,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Store indexes runs in a SQLite database under baseDir.
type Store struct {
	baseDir string

	mu sync.RWMutex
	db *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Path() string { return filepath.Join(s.baseDir, DBName) }

func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", s.Path())
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save records run, assigning an id and timestamp when missing, and
// returns the id.
func (s *Store) Save(ctx context.Context, run Run) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return "", err
	}

	var target sql.NullFloat64
	if run.TargetLink != nil {
		target = sql.NullFloat64{Float64: *run.TargetLink, Valid: true}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, n_bp, n_step, force, target_link, accept_rate, output, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			accept_rate = excluded.accept_rate,
			output = excluded.output,
			payload = excluded.payload
	`, run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.NumBP, run.NumStep, run.Force,
		target, run.AcceptRate, run.Output, payload)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// List returns every run, newest first.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var run Run
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Load returns the run with the given id, or ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (*Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var run Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("storage: store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			n_bp INTEGER NOT NULL,
			n_step INTEGER NOT NULL,
			force REAL NOT NULL,
			target_link REAL,
			accept_rate REAL NOT NULL,
			output TEXT NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
