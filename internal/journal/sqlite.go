package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dump-go/internal/dump"
	"dump-go/internal/journal/migrations"
	"dump-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal records store operations in a SQLite database.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens the journal at path, or an in-memory journal for
// ":memory:", and migrates its schema to the latest version.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	if err := migrations.CheckStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("checking journal schema: %w", err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
// An in-memory database is private to its connection, so the pool is
// limited to one connection in that case.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Record appends op and sets its ID.
func (j *SQLiteJournal) Record(op *model.Operation) error {
	res, err := j.db.ExecContext(context.Background(),
		`INSERT INTO operations (operation, canvas_id, item_id, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		op.Operation, op.CanvasID, op.ItemID, op.Detail, op.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading operation id: %w", err)
	}
	op.ID = id
	return nil
}

// Recent returns up to limit operations, newest first. A limit <= 0 returns all.
func (j *SQLiteJournal) Recent(limit int) ([]*model.Operation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(context.Background(),
		`SELECT id, operation, canvas_id, item_id, detail, created_at FROM operations ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		var op model.Operation
		var createdAt string
		if err := rows.Scan(&op.ID, &op.Operation, &op.CanvasID, &op.ItemID, &op.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		op.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing operation time %q: %w", createdAt, err)
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return ops, nil
}

// LatestID returns the ID of the newest operation, or 0 when the journal is empty.
func (j *SQLiteJournal) LatestID() (int64, error) {
	var id int64
	if err := j.db.QueryRowContext(context.Background(), `SELECT COALESCE(MAX(id), 0) FROM operations`).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading latest operation: %w", err)
	}
	return id, nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

var _ dump.Journal = (*SQLiteJournal)(nil)
