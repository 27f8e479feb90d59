package linediff

import (
	"github.com/pmezard/go-difflib/difflib"

	"gitnote/internal/note"
)

// Matcher computes line diffs in process with difflib's SequenceMatcher.
// A replaced block is reported as all of its deletes followed by all of its
// inserts, which is the shape the anchor resolver expects for edited lines.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// LineDiff returns the ordered line changes turning oldText into newText.
func (m *Matcher) LineDiff(oldText, newText string) ([]note.Change, error) {
	a := note.SplitLines(oldText)
	b := note.SplitLines(newText)

	sm := difflib.NewMatcher(a, b)
	changes := make([]note.Change, 0, len(a)+len(b))
	for _, op := range sm.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				changes = append(changes, note.Equal(op.I1+k, op.J1+k, b[op.J1+k]))
			}
		case 'd':
			changes = appendDeletes(changes, a, op.I1, op.I2)
		case 'i':
			changes = appendInserts(changes, b, op.J1, op.J2)
		case 'r':
			changes = appendDeletes(changes, a, op.I1, op.I2)
			changes = appendInserts(changes, b, op.J1, op.J2)
		}
	}
	return changes, nil
}

func appendDeletes(changes []note.Change, lines []string, from, to int) []note.Change {
	for i := from; i < to; i++ {
		changes = append(changes, note.Delete(i, lines[i]))
	}
	return changes
}

func appendInserts(changes []note.Change, lines []string, from, to int) []note.Change {
	for j := from; j < to; j++ {
		changes = append(changes, note.Insert(j, lines[j]))
	}
	return changes
}

var _ note.Differ = (*Matcher)(nil)
