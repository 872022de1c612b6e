package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

type memoryDocument struct {
	Document
	seq uint64
}

// MemoryStore keeps documents in process memory. It backs tests and
// single-process development setups.
type MemoryStore struct {
	mu          sync.RWMutex
	seq         uint64
	collections map[string]map[string]memoryDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]memoryDocument),
	}
}

func (s *MemoryStore) Save(_ context.Context, collection string, doc Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]memoryDocument)
		s.collections[collection] = docs
	}

	seq := s.seq + 1
	if existing, ok := docs[doc.ID]; ok {
		seq = existing.seq
		doc.CreatedAt = existing.CreatedAt
	} else {
		s.seq = seq
	}

	doc.Data = append(json.RawMessage(nil), doc.Data...)
	docs[doc.ID] = memoryDocument{Document: doc, seq: seq}
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, collection, id string) (Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Document{}, false, nil
	}
	return doc.clone(), true, nil
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter) ([]Document, error) {
	want, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]memoryDocument, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc.Data, want)
		if err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("match document %s: %w", doc.ID, err)
		}
		if ok {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]Document, len(matched))
	for i, doc := range matched {
		out[i] = doc.clone()
	}
	return out, nil
}

func (s *MemoryStore) UpdateByID(_ context.Context, collection, id string, fields map[string]any) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Document{}, false, nil
	}

	body := map[string]any{}
	if err := json.Unmarshal(doc.Data, &body); err != nil {
		return Document{}, false, fmt.Errorf("decode document %s: %w", id, err)
	}
	for key, value := range fields {
		if key == "_id" {
			continue
		}
		body[key] = value
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Document{}, false, fmt.Errorf("encode document %s: %w", id, err)
	}

	doc.Data = data
	s.collections[collection][id] = doc
	return doc.clone(), true, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return false, nil
	}
	delete(s.collections[collection], id)
	return true, nil
}

func (d memoryDocument) clone() Document {
	out := d.Document
	out.Data = append(json.RawMessage(nil), d.Data...)
	return out
}

// normalizeFilter round-trips the filter through JSON so its values compare
// equal to decoded document fields (numbers become float64 and so on).
func normalizeFilter(filter Filter) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return out, nil
}

func matches(data json.RawMessage, want map[string]any) (bool, error) {
	if len(want) == 0 {
		return true, nil
	}
	body := map[string]any{}
	if err := json.Unmarshal(data, &body); err != nil {
		return false, err
	}
	for key, value := range want {
		if !reflect.DeepEqual(body[key], value) {
			return false, nil
		}
	}
	return true, nil
}
