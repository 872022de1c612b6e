package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidDocument = errors.New("invalid document")

// Document is a stored record: its JSON body plus the identifier and
// creation time the store indexes on.
type Document struct {
	ID        string
	CreatedAt time.Time
	Data      json.RawMessage
}

// Filter matches documents whose top-level fields equal the given values.
// An empty filter matches every document.
type Filter map[string]any

// DocumentStore persists JSON documents grouped by collection. Find returns
// documents newest first. UpdateByID merges top-level fields and returns the
// updated document.
type DocumentStore interface {
	Save(ctx context.Context, collection string, doc Document) error
	FindByID(ctx context.Context, collection, id string) (Document, bool, error)
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	UpdateByID(ctx context.Context, collection, id string, fields map[string]any) (Document, bool, error)
	DeleteByID(ctx context.Context, collection, id string) (bool, error)
}

func validateDocument(doc Document) error {
	if doc.ID == "" {
		return errors.Join(ErrInvalidDocument, errors.New("id is required"))
	}
	if !json.Valid(doc.Data) {
		return errors.Join(ErrInvalidDocument, errors.New("data is not valid JSON"))
	}
	return nil
}
