package note

import (
	"fmt"
	"strings"
)

// Resolution is the outcome of resolving one message against current content.
type Resolution struct {
	Valid bool
	Line  int
}

// Resolve decides whether m, anchored to oldText, still applies to newText
// and at which line. The differ supplies the line-level changes.
func Resolve(d Differ, oldText, newText string, m Message) (Resolution, error) {
	changes, err := d.LineDiff(oldText, newText)
	if err != nil {
		return Resolution{}, fmt.Errorf("diffing anchored content: %w", err)
	}
	return ResolveChanges(changes, m.Line, m.Snippet), nil
}

// ResolveChanges walks changes looking for the anchored line.
//
// An equal record at the line settles it immediately. A delete at the line
// is held pending: a modified line shows up as a delete followed by an
// insert, so the next insert decides. If its trimmed text matches the
// snippet the line only moved or was re-indented; otherwise it was edited
// and the note no longer applies. A walk that never decides is invalid.
func ResolveChanges(changes []Change, line int, snippet string) Resolution {
	pending := false
	for _, c := range changes {
		switch {
		case c.Tag == ChangeEqual && c.OldIndex == line:
			return Resolution{Valid: true, Line: c.NewIndex}
		case c.Tag == ChangeDelete && c.OldIndex == line:
			pending = true
		case c.Tag == ChangeInsert && pending:
			if strings.TrimSpace(c.Text) == strings.TrimSpace(snippet) {
				return Resolution{Valid: true, Line: c.NewIndex}
			}
			return Resolution{Valid: false}
		}
	}
	return Resolution{Valid: false}
}
