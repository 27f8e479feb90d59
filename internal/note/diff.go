package note

// ChangeTag classifies one record of a line-level diff.
type ChangeTag int

const (
	ChangeEqual ChangeTag = iota
	ChangeInsert
	ChangeDelete
)

func (t ChangeTag) String() string {
	switch t {
	case ChangeEqual:
		return "equal"
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// NoIndex marks the absent side of an insert or delete.
const NoIndex = -1

// Change is one line of a line-level diff. Every old line and every new
// line appears in exactly one change, in old and new order respectively.
type Change struct {
	Tag      ChangeTag
	OldIndex int    // NoIndex for inserts
	NewIndex int    // NoIndex for deletes
	Text     string // the line itself (new side when present)
}

// Equal returns an equal change pairing old line i with new line j.
func Equal(i, j int, text string) Change {
	return Change{Tag: ChangeEqual, OldIndex: i, NewIndex: j, Text: text}
}

// Insert returns a change for new line j that has no old counterpart.
func Insert(j int, text string) Change {
	return Change{Tag: ChangeInsert, OldIndex: NoIndex, NewIndex: j, Text: text}
}

// Delete returns a change for old line i that has no new counterpart.
func Delete(i int, text string) Change {
	return Change{Tag: ChangeDelete, OldIndex: i, NewIndex: NoIndex, Text: text}
}

// Differ computes a line-level diff between two texts.
type Differ interface {
	LineDiff(oldText, newText string) ([]Change, error)
}
