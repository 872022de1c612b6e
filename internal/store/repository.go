package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dunamismax/sitecms/internal/domain"
	"github.com/dunamismax/sitecms/internal/id"
)

// Repository is a typed view of one collection in a DocumentStore.
type Repository[T any, PT interface {
	*T
	domain.Record
}] struct {
	store      DocumentStore
	collection string
	now        func() time.Time
}

func NewRepository[T any, PT interface {
	*T
	domain.Record
}](store DocumentStore, collection string) *Repository[T, PT] {
	return &Repository[T, PT]{
		store:      store,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository[T, PT]) Collection() string {
	return r.collection
}

// Create assigns an id and creation time when missing and persists record.
func (r *Repository[T, PT]) Create(ctx context.Context, record *T) error {
	PT(record).Stamp(id.New(), r.now())
	return r.Put(ctx, record)
}

// Put stores record under its existing id, replacing any previous body.
func (r *Repository[T, PT]) Put(ctx context.Context, record *T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", r.collection, err)
	}
	rec := PT(record)
	return r.store.Save(ctx, r.collection, Document{
		ID:        rec.RecordID(),
		CreatedAt: rec.CreatedTime(),
		Data:      data,
	})
}

func (r *Repository[T, PT]) Get(ctx context.Context, recordID string) (*T, bool, error) {
	doc, ok, err := r.store.FindByID(ctx, r.collection, recordID)
	if err != nil || !ok {
		return nil, ok, err
	}
	record, err := r.decode(doc)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// List returns matching records newest first.
func (r *Repository[T, PT]) List(ctx context.Context, filter Filter) ([]T, error) {
	docs, err := r.store.Find(ctx, r.collection, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		record, err := r.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, nil
}

func (r *Repository[T, PT]) Update(ctx context.Context, recordID string, fields map[string]any) (*T, bool, error) {
	doc, ok, err := r.store.UpdateByID(ctx, r.collection, recordID, fields)
	if err != nil || !ok {
		return nil, ok, err
	}
	record, err := r.decode(doc)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (r *Repository[T, PT]) Delete(ctx context.Context, recordID string) (bool, error) {
	return r.store.DeleteByID(ctx, r.collection, recordID)
}

func (r *Repository[T, PT]) decode(doc Document) (*T, error) {
	record := new(T)
	if err := json.Unmarshal(doc.Data, record); err != nil {
		return nil, fmt.Errorf("decode %s record %s: %w", r.collection, doc.ID, err)
	}
	PT(record).Stamp(doc.ID, doc.CreatedAt)
	return record, nil
}
