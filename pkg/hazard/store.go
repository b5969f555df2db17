package hazard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Hazard is a reported road hazard (flood, debris, ...) with a
// location and severity.
type Hazard struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS hazards (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	severity    TEXT NOT NULL DEFAULT 'medium',
	lat         REAL NOT NULL,
	lng         REAL NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	reported_at TIMESTAMP NOT NULL
);
`

// OpenStore opens (creating if needed) the hazard database at path.
// Use ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open hazard store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init hazard schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Report persists a new hazard, assigning its id and timestamp.
func (s *Store) Report(ctx context.Context, h Hazard) (Hazard, error) {
	h.ID = uuid.NewString()
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	if h.Severity == "" {
		h.Severity = "medium"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hazards (id, type, severity, lat, lng, description, reported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Type, h.Severity, h.Lat, h.Lng, h.Description, h.Timestamp)
	if err != nil {
		return Hazard{}, fmt.Errorf("insert hazard: %w", err)
	}
	return h, nil
}

// List returns all reported hazards, newest first.
func (s *Store) List(ctx context.Context) ([]Hazard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, severity, lat, lng, description, reported_at
		 FROM hazards ORDER BY reported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query hazards: %w", err)
	}
	defer rows.Close()

	hazards := []Hazard{}
	for rows.Next() {
		var h Hazard
		if err := rows.Scan(&h.ID, &h.Type, &h.Severity, &h.Lat, &h.Lng, &h.Description, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("scan hazard: %w", err)
		}
		hazards = append(hazards, h)
	}
	return hazards, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
