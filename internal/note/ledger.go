package note

import (
	"errors"
	"fmt"
)

// Ledger mediates between a record's persisted messages and their positions
// in the file's current content. It owns its record for the duration of one
// use case; callers persist RawView after mutating.
type Ledger struct {
	record *Record
	store  VersionStore
	clock  Clock
	idgen  IDGenerator
}

// NewLedger wraps record for resolution against store.
func NewLedger(record *Record, store VersionStore, clock Clock, idgen IDGenerator) *Ledger {
	return &Ledger{
		record: record.Clone(),
		store:  store,
		clock:  clock,
		idgen:  idgen,
	}
}

// RawView returns the stored messages unfiltered, as they should be persisted.
func (l *Ledger) RawView() *Record {
	return l.record.Clone()
}

// ResolvedView returns the messages that still apply to the current content,
// with line and anchor updated. Messages whose anchored content is
// unavailable (ErrContentUnavailable) are dropped, not reported; any other
// failure to fetch it is an error. The raw record is untouched.
func (l *Ledger) ResolvedView() (*Record, error) {
	resolved, _, err := l.ResolvedContent()
	return resolved, err
}

// ResolvedContent is ResolvedView together with the current content the
// messages were resolved against.
func (l *Ledger) ResolvedContent() (*Record, *Blob, error) {
	current, err := l.current()
	if err != nil {
		return nil, nil, err
	}

	contents := make(map[string]string)
	missing := make(map[string]bool)

	resolved := &Record{
		Identity:  l.record.Identity,
		Reference: l.record.Reference,
		Messages:  []Message{},
	}
	for _, m := range l.record.Messages {
		if m.AnchorContentID == current.ID {
			resolved.Messages = append(resolved.Messages, m)
			continue
		}
		if missing[m.AnchorContentID] {
			continue
		}
		old, ok := contents[m.AnchorContentID]
		if !ok {
			old, err = l.store.ContentByID(m.AnchorContentID)
			if errors.Is(err, ErrContentUnavailable) {
				missing[m.AnchorContentID] = true
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("reading anchored content of message %s: %w", m.ID, err)
			}
			contents[m.AnchorContentID] = old
		}

		res, err := Resolve(l.store, old, current.Content, m)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving message %s: %w", m.ID, err)
		}
		if res.Valid {
			resolved.Messages = append(resolved.Messages, m.Reanchored(res.Line, current.ID))
		}
	}
	return resolved, current, nil
}

// ExistsAt reports whether a valid message currently resolves to line.
func (l *Ledger) ExistsAt(line int) (bool, error) {
	resolved, err := l.ResolvedView()
	if err != nil {
		return false, err
	}
	return resolved.Find(line) != nil, nil
}

// FindIDAt returns the ID of the most recently appended message currently
// resolving to line.
func (l *Ledger) FindIDAt(line int) (string, bool, error) {
	resolved, err := l.ResolvedView()
	if err != nil {
		return "", false, err
	}
	m := resolved.Find(line)
	if m == nil {
		return "", false, nil
	}
	return m.ID, true, nil
}

// Append anchors a new message to line of the current content.
// It does not check for an existing message at line; that is the caller's policy.
func (l *Ledger) Append(line int, body string) (*Message, error) {
	current, err := l.current()
	if err != nil {
		return nil, err
	}
	snippet, ok := current.Snippet(line)
	if !ok {
		return nil, &OutOfRangeError{Path: l.record.Reference, Line: line, Lines: len(current.Lines())}
	}

	now := l.clock.Now().UTC().Truncate(timeResolution)
	m := Message{
		ID:              l.idgen.New(),
		AnchorContentID: current.ID,
		Line:            line,
		Snippet:         snippet,
		Body:            body,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	l.record.Messages = append(l.record.Messages, m)
	return &m, nil
}

// Edit replaces the body of the message with id. It reports whether the
// message was found; the anchor is not touched.
func (l *Ledger) Edit(id, body string) bool {
	found := false
	for i := range l.record.Messages {
		if l.record.Messages[i].ID == id {
			l.record.Messages[i].Body = body
			l.record.Messages[i].UpdatedAt = l.clock.Now().UTC().Truncate(timeResolution)
			found = true
		}
	}
	return found
}

// Delete removes the message with id and reports whether it existed.
func (l *Ledger) Delete(id string) bool {
	kept := l.record.Messages[:0]
	for _, m := range l.record.Messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	removed := len(kept) != len(l.record.Messages)
	l.record.Messages = kept
	return removed
}

func (l *Ledger) current() (*Blob, error) {
	blob, err := l.store.CurrentContent(l.record.Reference)
	if err != nil {
		return nil, fmt.Errorf("reading current content of %s: %w", l.record.Reference, err)
	}
	return blob, nil
}
