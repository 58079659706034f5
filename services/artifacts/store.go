package artifacts

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Artifact kinds produced by the trainer.
const (
	KindLongTerm  = "long_term"  // annualized regression slope
	KindShortTerm = "short_term" // 30-day momentum percent
)

// ErrArtifactMissing is returned when no value has been trained for a
// symbol/kind pair. The predictor degrades to 0.0 on it.
var ErrArtifactMissing = errors.New("artifact not found")

// Store is a typed {symbol, kind} -> float64 store backed by a local
// SQLite file, optionally mirrored to MongoDB when configured.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	mongo *mongoMirror
}

// Global artifact store
var GlobalStore *Store

// InitStore opens (creating if needed) the store at the given path and
// installs it as the global instance.
func InitStore(path string) error {
	store, err := Open(path)
	if err != nil {
		return err
	}
	GlobalStore = store
	log.Printf("Artifact store initialized at %s", path)
	return nil
}

// Open opens the SQLite artifact store at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping artifact store: %w", err)
	}

	store := &Store{db: db}
	if err := store.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create artifact table: %w", err)
	}
	return store, nil
}

func (s *Store) createTable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS model_artifacts (
			symbol     TEXT NOT NULL,
			kind       TEXT NOT NULL,
			value      REAL NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (symbol, kind)
		)
	`)
	return err
}

// Load returns the stored value for a symbol/kind pair. A symbol absent
// from the local store is looked up in the Mongo mirror before giving
// up with ErrArtifactMissing.
func (s *Store) Load(symbol, kind string) (float64, error) {
	s.mu.RLock()
	var value float64
	err := s.db.QueryRow(
		"SELECT value FROM model_artifacts WHERE symbol = ? AND kind = ?",
		symbol, kind,
	).Scan(&value)
	s.mu.RUnlock()

	if err == nil {
		return value, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to load artifact %s/%s: %w", symbol, kind, err)
	}

	if s.mongo != nil {
		if v, merr := s.mongo.load(symbol, kind); merr == nil {
			return v, nil
		}
	}
	return 0, ErrArtifactMissing
}

// Save upserts a value and mirrors it to Mongo when attached. Mirror
// failures are logged, never fatal.
func (s *Store) Save(symbol, kind string, value float64) error {
	s.mu.Lock()
	_, err := s.db.Exec(`
		INSERT INTO model_artifacts (symbol, kind, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol, kind) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, symbol, kind, value, time.Now().UTC())
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to save artifact %s/%s: %w", symbol, kind, err)
	}

	if s.mongo != nil {
		if merr := s.mongo.save(symbol, kind, value); merr != nil {
			log.Printf("Warning: failed to mirror artifact %s/%s to MongoDB: %v", symbol, kind, merr)
		}
	}
	return nil
}

// List returns every stored kind for a symbol.
func (s *Store) List(symbol string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT kind, value FROM model_artifacts WHERE symbol = ?", symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts for %s: %w", symbol, err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var kind string
		var value float64
		if err := rows.Scan(&kind, &value); err != nil {
			return nil, err
		}
		out[kind] = value
	}
	return out, rows.Err()
}

// Close closes the store and any attached mirror.
func (s *Store) Close() error {
	if s.mongo != nil {
		s.mongo.close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
