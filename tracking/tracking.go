// Package tracking stores one document per generated QR code in SQLite.
package tracking

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs/v2"
)

//go:embed schema.sql
var schemaSQL string

// Document records what was encoded and when.
type Document struct {
	ID        string
	Data      string
	Format    string
	Timestamp time.Time
}

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.Errorf("open tracking database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, errs.Combine(errs.Errorf("connect tracking database: %w", err), db.Close())
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, errs.Combine(errs.Errorf("%s: %w", pragma, err), db.Close())
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, errs.Combine(errs.Errorf("apply tracking schema: %w", err), db.Close())
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return errs.Wrap(s.db.Close())
}

// Record stores a document for data rendered as format, assigning it a
// time ordered id and the current UTC time.
func (s *Store) Record(ctx context.Context, data, format string) (Document, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Document{}, errs.Wrap(err)
	}

	doc := Document{
		ID:        id.String(),
		Data:      data,
		Format:    format,
		Timestamp: s.now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tracking (id, data, format, timestamp) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Data, doc.Format, doc.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return Document{}, errs.Errorf("record tracking document: %w", err)
	}

	return doc, nil
}

func (s *Store) Count(ctx context.Context) (n int64, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracking`).Scan(&n)
	return n, errs.Wrap(err)
}

// Recent returns up to limit documents, newest first.
func (s *Store) Recent(ctx context.Context, limit int) (docs []Document, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, format, timestamp FROM tracking ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	for rows.Next() {
		var doc Document
		var ts string
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.Format, &ts); err != nil {
			return nil, errs.Wrap(err)
		}
		if doc.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, errs.Errorf("document %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, errs.Wrap(rows.Err())
}
