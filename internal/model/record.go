package model

import (
	"time"

	"github.com/google/uuid"
)

// DataRecord is a single unit of ingested data flowing through the pipeline.
// The identity fields (ID, Source, Timestamp) are fixed at creation; only the
// Data payload is replaced by pipeline operations.
type DataRecord struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      interface{}            `json:"data"`
	Source    string                 `json:"source"`
	Processed bool                   `json:"processed"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// NewRecord creates a record for the given source with a fresh id.
func NewRecord(source string, data interface{}) DataRecord {
	return DataRecord{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
		Source:    source,
		Processed: false,
		Metadata:  make(map[string]interface{}),
	}
}

// Fields returns the record's data as a field map. The second return is
// false when the payload is not an object (array or scalar payloads).
func (r DataRecord) Fields() (map[string]interface{}, bool) {
	m, ok := r.Data.(map[string]interface{})
	return m, ok
}

// Field looks up a single field of an object payload.
func (r DataRecord) Field(name string) (interface{}, bool) {
	m, ok := r.Fields()
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// WithData returns a copy of the record carrying a new payload. Used by
// operations that replace fields so the stored record set is never mutated.
func (r DataRecord) WithData(data interface{}) DataRecord {
	r.Data = data
	return r
}

// CopyFields returns a mutable copy of an object payload's field map.
func (r DataRecord) CopyFields() (map[string]interface{}, bool) {
	m, ok := r.Fields()
	if !ok {
		return nil, false
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}
