package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/opencontainers/go-digest"
)

// ErrNoEntries is returned by Latest when nothing was recorded yet.
var ErrNoEntries = errors.New("no history entries")

// Entry describes one emitted descriptor.
type Entry struct {
	ID          uuid.UUID
	Project     string
	Format      string
	Digest      digest.Digest
	Definitions int
	CreatedAt   time.Time
}

// Ledger is a SQLite-backed, append-only list of entries.
type Ledger struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the ledger database at path in WAL mode.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Migrate creates the ledger schema if it does not exist.
func (l *Ledger) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS emits (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		project TEXT NOT NULL,
		format TEXT NOT NULL,
		digest TEXT NOT NULL,
		definitions INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_emits_project_format ON emits(project, format);
	`
	_, err := l.db.ExecContext(ctx, schema)
	return err
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends e. A zero ID or CreatedAt is filled in.
func (l *Ledger) Record(ctx context.Context, e Entry) (Entry, error) {
	if err := e.Digest.Validate(); err != nil {
		return Entry{}, fmt.Errorf("invalid digest %q: %w", e.Digest, err)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO emits (id, project, format, digest, definitions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID.String(), e.Project, e.Format, e.Digest.String(), e.Definitions, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	return e, nil
}

// Latest returns the most recent entry for a project and format.
func (l *Ledger) Latest(ctx context.Context, project, format string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.db.QueryRowContext(ctx, `
		SELECT id, project, format, digest, definitions, created_at
		FROM emits WHERE project = ? AND format = ?
		ORDER BY seq DESC LIMIT 1
	`, project, format)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNoEntries
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query latest history entry: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (l *Ledger) List(ctx context.Context, limit int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, project, format, digest, definitions, created_at
		FROM emits ORDER BY seq DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e         Entry
		id        string
		rawDigest string
	)
	if err := s.Scan(&id, &e.Project, &e.Format, &rawDigest, &e.Definitions, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid entry id %q: %w", id, err)
	}
	e.ID = parsed
	e.Digest = digest.Digest(rawDigest)
	return e, nil
}
