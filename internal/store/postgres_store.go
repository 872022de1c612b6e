package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const documentSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_created_idx
	ON documents (collection, created_at DESC);
`

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, documentSchemaSQL); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Save(ctx context.Context, collection string, doc Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (collection, id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		collection,
		doc.ID,
		string(doc.Data),
		doc.CreatedAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert %s document: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, collection, id string) (Document, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, data, created_at
		 FROM documents
		 WHERE collection = $1 AND id = $2`,
		collection,
		id,
	)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("query %s document: %w", collection, err)
	}
	return doc, true, nil
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	if filter == nil {
		filter = Filter{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, data, created_at
		 FROM documents
		 WHERE collection = $1 AND data @> $2::jsonb
		 ORDER BY created_at DESC, id DESC`,
		collection,
		string(filterJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s documents: %w", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s documents: %w", collection, err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateByID(ctx context.Context, collection, id string, fields map[string]any) (Document, bool, error) {
	delete(fields, "_id")
	patch, err := json.Marshal(fields)
	if err != nil {
		return Document{}, false, fmt.Errorf("encode update: %w", err)
	}

	row := s.db.QueryRowContext(
		ctx,
		`UPDATE documents
		 SET data = data || $3::jsonb, updated_at = $4
		 WHERE collection = $1 AND id = $2
		 RETURNING id, data, created_at`,
		collection,
		id,
		string(patch),
		time.Now().UTC(),
	)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("update %s document: %w", collection, err)
	}
	return doc, true, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, collection, id string) (bool, error) {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("delete %s document: %w", collection, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s document: %w", collection, err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc  Document
		data []byte
	)
	if err := row.Scan(&doc.ID, &data, &doc.CreatedAt); err != nil {
		return Document{}, err
	}
	doc.Data = json.RawMessage(data)
	return doc, nil
}
