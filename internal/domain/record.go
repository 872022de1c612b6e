package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is implemented by every persisted type through an embedded Meta or
// DatedMeta.
type Record interface {
	RecordID() string
	CreatedTime() time.Time
	Stamp(id string, at time.Time)
}

// Meta carries the identifier and creation time of records that expose
// "createdAt".
type Meta struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Meta) RecordID() string       { return m.ID }
func (m *Meta) CreatedTime() time.Time { return m.CreatedAt }

// Stamp fills the id and creation time when they are not already set.
func (m *Meta) Stamp(id string, at time.Time) {
	if m.ID == "" {
		m.ID = id
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = at
	}
}

// DatedMeta is Meta for inbox-style records that expose "date".
type DatedMeta struct {
	ID   string    `json:"_id"`
	Date time.Time `json:"date"`
}

func (m *DatedMeta) RecordID() string       { return m.ID }
func (m *DatedMeta) CreatedTime() time.Time { return m.Date }

func (m *DatedMeta) Stamp(id string, at time.Time) {
	if m.ID == "" {
		m.ID = id
	}
	if m.Date.IsZero() {
		m.Date = at
	}
}

// PatchFields returns the top-level JSON fields an update request carries.
// Update types mark every field omitempty, so absent fields are left out.
func PatchFields(update any) (map[string]any, error) {
	raw, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("marshal update: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal update: %w", err)
	}
	delete(fields, "_id")
	return fields, nil
}
