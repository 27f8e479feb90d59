package note

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// TimestampLayout is the on-disk form of message timestamps: RFC 3339, UTC,
// whole seconds.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Record is the complete annotation set of one tracked file.
// Identity is derived from the repository-relative path, never from content,
// so a record survives edits to the file but not renames.
type Record struct {
	Identity  string    `json:"identity"`
	Reference string    `json:"reference"`
	Messages  []Message `json:"messages"`
}

// Message is a single note anchored to one line of one content version.
type Message struct {
	ID              string
	AnchorContentID string
	Line            int
	Snippet         string
	Body            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Identity returns the storage key for a repository-relative path: the
// lowercase hex SHA-256 of its slash-separated form.
func Identity(relativePath string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(relativePath)))
	return hex.EncodeToString(sum[:])
}

// NewRecord creates an empty record for the given repository-relative path.
func NewRecord(relativePath string) *Record {
	return &Record{
		Identity:  Identity(relativePath),
		Reference: filepath.ToSlash(relativePath),
		Messages:  []Message{},
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	messages := make([]Message, len(r.Messages))
	copy(messages, r.Messages)
	return &Record{
		Identity:  r.Identity,
		Reference: r.Reference,
		Messages:  messages,
	}
}

// Find returns the most recently appended message at line, or nil.
func (r *Record) Find(line int) *Message {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Line == line {
			return &r.Messages[i]
		}
	}
	return nil
}

// Reanchored returns a copy of m pointing at a new line of a new content version.
// UpdatedAt is left alone: re-anchoring is not an edit.
func (m Message) Reanchored(line int, contentID string) Message {
	m.Line = line
	m.AnchorContentID = contentID
	return m
}

type messageJSON struct {
	ID              string `json:"id"`
	AnchorContentID string `json:"anchor_content_id"`
	Line            int    `json:"line"`
	Snippet         string `json:"snippet"`
	Body            string `json:"body"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// MarshalJSON encodes the message with timestamps in TimestampLayout.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:              m.ID,
		AnchorContentID: m.AnchorContentID,
		Line:            m.Line,
		Snippet:         m.Snippet,
		Body:            m.Body,
		CreatedAt:       m.CreatedAt.UTC().Format(TimestampLayout),
		UpdatedAt:       m.UpdatedAt.UTC().Format(TimestampLayout),
	})
}

// UnmarshalJSON decodes a message written by MarshalJSON.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	createdAt, err := parseTimestamp(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("parsing created_at of message %s: %w", raw.ID, err)
	}
	updatedAt, err := parseTimestamp(raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("parsing updated_at of message %s: %w", raw.ID, err)
	}
	*m = Message{
		ID:              raw.ID,
		AnchorContentID: raw.AnchorContentID,
		Line:            raw.Line,
		Snippet:         raw.Snippet,
		Body:            raw.Body,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
	return nil
}

// parseTimestamp reads a TimestampLayout value. time.Parse tolerates a
// fractional second after the seconds field; it is dropped so the decoded
// value is exactly what MarshalJSON writes back.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(timeResolution), nil
}

// timeResolution matches the precision of TimestampLayout so that records
// round-trip through storage unchanged.
const timeResolution = time.Second
