package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ArticleHistoryBot/internal/ports"
)

// SqliteRepository persists per-page treatment outcomes for deduplication
// and audit.
type SqliteRepository struct {
	db *sql.DB
}

var _ ports.RunRepository = (*SqliteRepository)(nil)

// Open opens (or creates) the audit database at path.
func Open(path string) (*SqliteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &SqliteRepository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSqliteRepository wires an existing handle, migrating the schema.
func NewSqliteRepository(db *sql.DB) (*SqliteRepository, error) {
	repo := &SqliteRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SqliteRepository) migrate() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS treated_pages (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		rev_id INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	_, err = r.db.Exec(`CREATE INDEX IF NOT EXISTS treated_pages_title ON treated_pages (title)`)
	if err != nil {
		return fmt.Errorf("migrate index: %w", err)
	}
	return nil
}

// Close releases the underlying handle.
func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

// AlreadyTreated reports whether the page was merged in an earlier run.
func (r *SqliteRepository) AlreadyTreated(ctx context.Context, title string) (bool, error) {
	query, args, err := sq.Select("COUNT(1)").
		From("treated_pages").
		Where(sq.Eq{"title": title, "outcome": "merged"}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query treated: %w", err)
	}
	return count > 0, nil
}

// Record stores one treatment outcome; a missing ID gets generated.
func (r *SqliteRepository) Record(ctx context.Context, rec ports.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query, args, err := sq.Insert("treated_pages").
		Columns("id", "title", "rev_id", "outcome", "detail", "recorded_at").
		Values(rec.ID, rec.Title, rec.RevID, rec.Outcome, rec.Detail, rec.RecordedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}
