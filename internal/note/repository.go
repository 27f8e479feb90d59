package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// Repository loads and saves annotation records through a RecordStore.
// It knows nothing about resolution.
type Repository struct {
	store RecordStore
}

// NewRepository creates a Repository backed by store.
func NewRepository(store RecordStore) *Repository {
	return &Repository{store: store}
}

// Load returns the record for a repository-relative path. When nothing is
// stored yet an empty record is created and persisted.
func (r *Repository) Load(relativePath string) (*Record, error) {
	reference := filepath.ToSlash(relativePath)
	identity := Identity(reference)

	data, err := r.store.Get(identity)
	if errors.Is(err, ErrNoRecord) {
		record := NewRecord(reference)
		if err := r.Save(record); err != nil {
			return nil, err
		}
		return record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading record %s: %w", ErrStorage, identity, err)
	}

	record, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding record %s: %w", ErrStorage, identity, err)
	}
	if record.Identity != identity || record.Reference != reference {
		return nil, fmt.Errorf("%w: record %s belongs to %q, not %q", ErrStorage, identity, record.Reference, reference)
	}
	return record, nil
}

// Get returns the stored record for identity without creating one.
// Fails with ErrNoRecord when nothing is stored.
func (r *Repository) Get(identity string) (*Record, error) {
	data, err := r.store.Get(identity)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading record %s: %w", ErrStorage, identity, err)
	}
	record, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding record %s: %w", ErrStorage, identity, err)
	}
	return record, nil
}

// Save overwrites the stored record with its full raw state.
func (r *Repository) Save(record *Record) error {
	data, err := Encode(record)
	if err != nil {
		return fmt.Errorf("%w: encoding record %s: %w", ErrStorage, record.Identity, err)
	}
	if err := r.store.Put(record.Identity, data); err != nil {
		return fmt.Errorf("%w: writing record %s: %w", ErrStorage, record.Identity, err)
	}
	return nil
}

// Encode serializes a record in the on-disk JSON format.
func Encode(record *Record) ([]byte, error) {
	out := record
	if out.Messages == nil {
		out = record.Clone()
	}
	return json.Marshal(out)
}

// Decode parses a record written by Encode.
func Decode(data []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record.Messages == nil {
		record.Messages = []Message{}
	}
	return &record, nil
}
