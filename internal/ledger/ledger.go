// Package ledger records article generation runs in a SQLite database and
// provides the per-language lock that keeps two generator runs for the same
// language from interleaving.
package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrLocked is returned when another run holds the language lock.
var ErrLocked = errors.New("language is locked by another generation run")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Ledger is an open generation ledger.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one generation run for a language.
type Run struct {
	ID         int64
	Language   string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Archived   int
}

// Article is one file written by a run.
type Article struct {
	Topic  string
	Path   string
	Source string
}

// Lock is a held language lock.
type Lock struct {
	Language string
	Owner    string
}

// Open opens or creates the ledger at path and applies migrations.
// The path ":memory:" gives a private in-memory ledger.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// One connection keeps the pragmas (and an in-memory database) in place.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Ledger{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("migrating ledger: %w", err)
	}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// AcquireLock takes the lock for language. A lock older than ttl is
// considered abandoned and taken over; a live one yields ErrLocked.
func (l *Ledger) AcquireLock(ctx context.Context, language string, ttl time.Duration) (*Lock, error) {
	now := l.now()
	lock := &Lock{Language: language, Owner: uuid.NewString()}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin lock transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM language_locks WHERE language = ? AND acquired_at <= ?`,
		language, now.Add(-ttl).Unix(),
	); err != nil {
		return nil, fmt.Errorf("clearing stale lock: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO language_locks (language, owner, acquired_at) VALUES (?, ?, ?)
		 ON CONFLICT(language) DO NOTHING`,
		language, lock.Owner, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocked, language)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lock: %w", err)
	}
	return lock, nil
}

// ReleaseLock drops lock if it is still owned by the caller.
func (l *Ledger) ReleaseLock(ctx context.Context, lock *Lock) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM language_locks WHERE language = ? AND owner = ?`,
		lock.Language, lock.Owner,
	)
	if err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// StartRun inserts a running generation run and returns its id.
func (l *Ledger) StartRun(ctx context.Context, language string) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO generation_runs (language, started_at, status) VALUES (?, ?, ?)`,
		language, l.now().Unix(), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("starting run: %w", err)
	}
	return res.LastInsertId()
}

// RecordArticle stores one written file for run.
func (l *Ledger) RecordArticle(ctx context.Context, runID int64, a Article) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO generated_articles (run_id, topic, path, source, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, a.Topic, a.Path, a.Source, l.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording article: %w", err)
	}
	return nil
}

// FinishRun marks run as done with status and the number of archived files.
func (l *Ledger) FinishRun(ctx context.Context, runID int64, status string, archived int) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE generation_runs SET finished_at = ?, status = ?, archived = ? WHERE id = ?`,
		l.now().Unix(), status, archived, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs for language, newest first.
func (l *Ledger) Runs(ctx context.Context, language string, limit int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, language, started_at, finished_at, status, archived
		 FROM generation_runs WHERE language = ?
		 ORDER BY started_at DESC, id DESC LIMIT ?`,
		language, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Language, &started, &finished, &r.Status, &r.Archived); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			r.FinishedAt = time.Unix(finished.Int64, 0)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Articles returns the files written by run in insertion order.
func (l *Ledger) Articles(ctx context.Context, runID int64) ([]Article, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT topic, path, source FROM generated_articles WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.Topic, &a.Path, &a.Source); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
