package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS partitions (
    year_month TEXT PRIMARY KEY,
    incidents  TEXT NOT NULL
);
`

// SQLiteStore implements the Store interface on a local SQLite database.
// Each row is one monthly partition; the incident list is stored as a JSON
// document, mirroring the key-value record shape of the contract.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// DefaultPath is where the incident database lives unless configured.
const DefaultPath = ".incident-agent/incidents.db"

// Open creates a SQLite-backed store at path. The special value ":memory:"
// creates an in-memory database, useful for tests.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// WAL mode for better concurrency between independent pipeline runs.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// GetPartition returns the record for the month, or nil if absent.
func (s *SQLiteStore) GetPartition(ctx context.Context, yearMonth string) (*Partition, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT incidents FROM partitions WHERE year_month = ?", yearMonth,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", yearMonth, err)
	}

	var incidents []Entry
	if err := json.Unmarshal([]byte(doc), &incidents); err != nil {
		return nil, fmt.Errorf("corrupt incident list in partition %s: %w", yearMonth, err)
	}
	return &Partition{YearMonth: yearMonth, Incidents: incidents}, nil
}

// PutPartition creates or replaces a partition record.
func (s *SQLiteStore) PutPartition(ctx context.Context, p *Partition) error {
	doc, err := json.Marshal(p.Incidents)
	if err != nil {
		return fmt.Errorf("failed to encode incident list: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO partitions (year_month, incidents) VALUES (?, ?) ON CONFLICT(year_month) DO UPDATE SET incidents = excluded.incidents",
		p.YearMonth, string(doc))
	if err != nil {
		return fmt.Errorf("failed to write partition %s: %w", p.YearMonth, err)
	}
	return nil
}

// AppendIncident appends an entry to an existing partition's incident list.
func (s *SQLiteStore) AppendIncident(ctx context.Context, yearMonth string, e Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx,
		"SELECT incidents FROM partitions WHERE year_month = ?", yearMonth,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return fmt.Errorf("partition %s does not exist", yearMonth)
	}
	if err != nil {
		return fmt.Errorf("failed to read partition %s: %w", yearMonth, err)
	}

	var incidents []Entry
	if err := json.Unmarshal([]byte(doc), &incidents); err != nil {
		return fmt.Errorf("corrupt incident list in partition %s: %w", yearMonth, err)
	}
	incidents = append(incidents, e)

	updated, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("failed to encode incident list: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE partitions SET incidents = ? WHERE year_month = ?",
		string(updated), yearMonth); err != nil {
		return fmt.Errorf("failed to update partition %s: %w", yearMonth, err)
	}

	return tx.Commit()
}

// ListPartitions returns every stored partition, newest month first.
func (s *SQLiteStore) ListPartitions(ctx context.Context) ([]*Partition, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT year_month, incidents FROM partitions ORDER BY year_month DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer rows.Close()

	var partitions []*Partition
	for rows.Next() {
		var ym, doc string
		if err := rows.Scan(&ym, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan partition row: %w", err)
		}
		var incidents []Entry
		if err := json.Unmarshal([]byte(doc), &incidents); err != nil {
			return nil, fmt.Errorf("corrupt incident list in partition %s: %w", ym, err)
		}
		partitions = append(partitions, &Partition{YearMonth: ym, Incidents: incidents})
	}
	return partitions, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
