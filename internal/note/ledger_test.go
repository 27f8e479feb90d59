package note_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitnote/internal/note"
	"gitnote/internal/testutil"
	"gitnote/internal/versionstore"
)

// countingStore records how often each content id is fetched.
type countingStore struct {
	*versionstore.MemoryStore
	fetches map[string]int
}

func (s *countingStore) ContentByID(id string) (string, error) {
	s.fetches[id]++
	return s.MemoryStore.ContentByID(id)
}

// unreadableStore fails every historical read with err.
type unreadableStore struct {
	*versionstore.MemoryStore
	err error
}

func (s *unreadableStore) ContentByID(string) (string, error) {
	return "", s.err
}

// currentCountingStore records how often current content is read.
type currentCountingStore struct {
	*versionstore.MemoryStore
	reads int
}

func (s *currentCountingStore) CurrentContent(path string) (*note.Blob, error) {
	s.reads++
	return s.MemoryStore.CurrentContent(path)
}

func newLedgerFixture(t *testing.T, content string) (*note.Ledger, *versionstore.MemoryStore, *testutil.StubClock) {
	t.Helper()
	vs := testutil.NewTestVersionStore()
	vs.SetFile("src/a.txt", content)
	clock := testutil.FixedClock()
	ledger := note.NewLedger(note.NewRecord("src/a.txt"), vs, clock, testutil.NewStubIDGenerator())
	return ledger, vs, clock
}

func TestLedger_AppendThenExistsAt(t *testing.T) {
	ledger, _, _ := newLedgerFixture(t, "foo\nbar\nbaz")

	if _, err := ledger.Append(1, "note"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	exists, err := ledger.ExistsAt(1)
	if err != nil {
		t.Fatalf("ExistsAt() error = %v", err)
	}
	if !exists {
		t.Error("ExistsAt(1) = false, want true")
	}
	if exists, _ := ledger.ExistsAt(0); exists {
		t.Error("ExistsAt(0) = true, want false")
	}

	// The ledger itself does not refuse a second note on the same line.
	if _, err := ledger.Append(1, "note2"); err != nil {
		t.Fatalf("second Append() error = %v", err)
	}
	if n := len(ledger.RawView().Messages); n != 2 {
		t.Errorf("len(RawView().Messages) = %d, want 2", n)
	}

	id, ok, err := ledger.FindIDAt(1)
	if err != nil {
		t.Fatalf("FindIDAt() error = %v", err)
	}
	if !ok || id != "msg-2" {
		t.Errorf("FindIDAt(1) = %q, %v; want msg-2, true", id, ok)
	}
}

func TestLedger_Append(t *testing.T) {
	ledger, vs, clock := newLedgerFixture(t, "foo\n  bar  \nbaz\n")
	clock.Advance(750 * time.Millisecond)

	m, err := ledger.Append(1, "check this")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	current, err := vs.CurrentContent("src/a.txt")
	if err != nil {
		t.Fatalf("CurrentContent() error = %v", err)
	}
	wantTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	want := &note.Message{
		ID:              "msg-1",
		AnchorContentID: current.ID,
		Line:            1,
		Snippet:         "  bar  ",
		Body:            "check this",
		CreatedAt:       wantTime,
		UpdatedAt:       wantTime,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Append() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]note.Message{*want}, ledger.RawView().Messages); diff != "" {
		t.Errorf("RawView() mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_AppendOutOfRange(t *testing.T) {
	for _, line := range []int{-1, 3, 10} {
		ledger, _, _ := newLedgerFixture(t, "foo\nbar\nbaz\n")
		_, err := ledger.Append(line, "note")
		if !errors.Is(err, note.ErrOutOfRange) {
			t.Fatalf("Append(%d) error = %v, want ErrOutOfRange", line, err)
		}
		var oor *note.OutOfRangeError
		if !errors.As(err, &oor) || oor.Lines != 3 || oor.Line != line {
			t.Errorf("Append(%d) error = %#v", line, err)
		}
		if n := len(ledger.RawView().Messages); n != 0 {
			t.Errorf("RawView() has %d messages after failed Append", n)
		}
	}
}

func TestLedger_ResolvedView(t *testing.T) {
	t.Run("moves with inserted lines", func(t *testing.T) {
		ledger, vs, _ := newLedgerFixture(t, "foo\nbar\nbaz")
		appended, err := ledger.Append(1, "note")
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		vs.SetFile("src/a.txt", "foo\nX\nbar\nbaz")
		resolved, err := ledger.ResolvedView()
		if err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		if len(resolved.Messages) != 1 {
			t.Fatalf("len(ResolvedView().Messages) = %d, want 1", len(resolved.Messages))
		}
		got := resolved.Messages[0]
		if got.Line != 2 {
			t.Errorf("resolved Line = %d, want 2", got.Line)
		}
		if got.AnchorContentID != versionstore.BlobID([]byte("foo\nX\nbar\nbaz")) {
			t.Errorf("resolved AnchorContentID = %s, want current content id", got.AnchorContentID)
		}
		if !got.UpdatedAt.Equal(appended.UpdatedAt) {
			t.Error("re-anchoring changed UpdatedAt")
		}

		raw := ledger.RawView().Messages[0]
		if raw.Line != 1 || raw.AnchorContentID != appended.AnchorContentID {
			t.Errorf("RawView() message changed by ResolvedView: %+v", raw)
		}
	})

	t.Run("hides invalidated notes without deleting them", func(t *testing.T) {
		ledger, vs, _ := newLedgerFixture(t, "foo\nbar\nbaz")
		if _, err := ledger.Append(1, "note"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		vs.SetFile("src/a.txt", "foo\nX\nbaz")
		resolved, err := ledger.ResolvedView()
		if err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		if len(resolved.Messages) != 0 {
			t.Errorf("ResolvedView() = %+v, want no messages", resolved.Messages)
		}
		if len(ledger.RawView().Messages) != 1 {
			t.Error("invalidated note was removed from RawView()")
		}

		// Restoring the anchored content brings the note back.
		vs.SetFile("src/a.txt", "foo\nbar\nbaz")
		if exists, _ := ledger.ExistsAt(1); !exists {
			t.Error("ExistsAt(1) = false after restoring content")
		}
	})

	t.Run("drops notes whose content is gone", func(t *testing.T) {
		ledger, vs, _ := newLedgerFixture(t, "foo\nbar\nbaz")
		m, err := ledger.Append(1, "note")
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		vs.SetFile("src/a.txt", "foo\nbar\nbaz\nqux")
		vs.Forget(m.AnchorContentID)

		resolved, err := ledger.ResolvedView()
		if err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		if len(resolved.Messages) != 0 {
			t.Errorf("ResolvedView() = %+v, want no messages", resolved.Messages)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		ledger, vs, _ := newLedgerFixture(t, "foo\nbar\nbaz")
		for _, line := range []int{0, 2} {
			if _, err := ledger.Append(line, "note"); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
		}
		vs.SetFile("src/a.txt", "head\nfoo\nbar\nbaz")

		first, err := ledger.ResolvedView()
		if err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		second, err := ledger.ResolvedView()
		if err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("ResolvedView() not idempotent (-first +second):\n%s", diff)
		}
	})

	t.Run("fetches each anchored content once", func(t *testing.T) {
		vs := &countingStore{MemoryStore: testutil.NewTestVersionStore(), fetches: map[string]int{}}
		vs.SetFile("src/a.txt", "foo\nbar\nbaz")
		ledger := note.NewLedger(note.NewRecord("src/a.txt"), vs, testutil.FixedClock(), testutil.NewStubIDGenerator())
		for _, line := range []int{0, 1, 2} {
			if _, err := ledger.Append(line, "note"); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
		}

		vs.SetFile("src/a.txt", "foo\nbar\nbaz\n")
		if _, err := ledger.ResolvedView(); err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		old := versionstore.BlobID([]byte("foo\nbar\nbaz"))
		if vs.fetches[old] != 1 {
			t.Errorf("ContentByID(%s) called %d times, want 1", old, vs.fetches[old])
		}
	})

	t.Run("fails when anchored content cannot be read", func(t *testing.T) {
		vs := &unreadableStore{MemoryStore: testutil.NewTestVersionStore(), err: errors.New("permission denied")}
		vs.SetFile("src/a.txt", "foo\nbar\nbaz")
		ledger := note.NewLedger(note.NewRecord("src/a.txt"), vs, testutil.FixedClock(), testutil.NewStubIDGenerator())
		if _, err := ledger.Append(1, "note"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		vs.SetFile("src/a.txt", "head\nfoo\nbar\nbaz")
		_, err := ledger.ResolvedView()
		if err == nil {
			t.Fatal("ResolvedView() error = nil, want the read failure")
		}
		if !errors.Is(err, vs.err) {
			t.Errorf("ResolvedView() error = %v, want wrapped %v", err, vs.err)
		}
		if errors.Is(err, note.ErrContentUnavailable) {
			t.Errorf("ResolvedView() error = %v, must not be ErrContentUnavailable", err)
		}
		if n := len(ledger.RawView().Messages); n != 1 {
			t.Errorf("len(RawView().Messages) = %d, want 1", n)
		}
	})

	t.Run("drops notes whose store reports them unavailable", func(t *testing.T) {
		vs := &unreadableStore{
			MemoryStore: testutil.NewTestVersionStore(),
			err:         fmt.Errorf("%w: pruned", note.ErrContentUnavailable),
		}
		vs.SetFile("src/a.txt", "foo\nbar\nbaz")
		ledger := note.NewLedger(note.NewRecord("src/a.txt"), vs, testutil.FixedClock(), testutil.NewStubIDGenerator())
		if _, err := ledger.Append(1, "note"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		vs.SetFile("src/a.txt", "head\nfoo\nbar\nbaz")
		resolved, err := ledger.ResolvedView()
		if err != nil {
			t.Fatalf("ResolvedView() error = %v", err)
		}
		if len(resolved.Messages) != 0 {
			t.Errorf("ResolvedView() = %+v, want no messages", resolved.Messages)
		}
	})

	t.Run("returns the content it resolved against", func(t *testing.T) {
		vs := &currentCountingStore{MemoryStore: testutil.NewTestVersionStore()}
		vs.SetFile("src/a.txt", "foo\nbar\nbaz")
		ledger := note.NewLedger(note.NewRecord("src/a.txt"), vs, testutil.FixedClock(), testutil.NewStubIDGenerator())
		if _, err := ledger.Append(1, "note"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		vs.SetFile("src/a.txt", "head\nfoo\nbar\nbaz")
		vs.reads = 0
		resolved, content, err := ledger.ResolvedContent()
		if err != nil {
			t.Fatalf("ResolvedContent() error = %v", err)
		}
		if vs.reads != 1 {
			t.Errorf("CurrentContent called %d times, want 1", vs.reads)
		}
		if content.Content != "head\nfoo\nbar\nbaz" {
			t.Errorf("ResolvedContent() content = %q", content.Content)
		}
		if len(resolved.Messages) != 1 || resolved.Messages[0].AnchorContentID != content.ID {
			t.Errorf("ResolvedContent() messages = %+v, want one anchored to %s", resolved.Messages, content.ID)
		}
	})

	t.Run("fails when current content is unreadable", func(t *testing.T) {
		vs := testutil.NewTestVersionStore()
		ledger := note.NewLedger(note.NewRecord("missing.txt"), vs, testutil.FixedClock(), testutil.NewStubIDGenerator())
		if _, err := ledger.ResolvedView(); err == nil {
			t.Error("ResolvedView() expected error")
		}
	})
}

func TestLedger_Edit(t *testing.T) {
	ledger, vs, clock := newLedgerFixture(t, "foo\nbar\nbaz")
	m, err := ledger.Append(1, "before")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	vs.SetFile("src/a.txt", "top\nfoo\nbar\nbaz")
	clock.Advance(time.Hour)

	if !ledger.Edit(m.ID, "after") {
		t.Fatal("Edit() = false, want true")
	}
	got := ledger.RawView().Messages[0]
	if got.Body != "after" {
		t.Errorf("Body = %q, want %q", got.Body, "after")
	}
	if !got.UpdatedAt.Equal(m.CreatedAt.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, m.CreatedAt.Add(time.Hour))
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}
	if got.Line != 1 || got.AnchorContentID != m.AnchorContentID || got.Snippet != "bar" {
		t.Errorf("Edit() touched the anchor: %+v", got)
	}

	before := ledger.RawView()
	if ledger.Edit("msg-404", "nope") {
		t.Error("Edit(unknown) = true, want false")
	}
	if diff := cmp.Diff(before, ledger.RawView()); diff != "" {
		t.Errorf("Edit(unknown) changed the record:\n%s", diff)
	}
}

func TestLedger_Delete(t *testing.T) {
	ledger, _, _ := newLedgerFixture(t, "foo\nbar\nbaz")
	for _, line := range []int{0, 1} {
		if _, err := ledger.Append(line, "note"); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	if !ledger.Delete("msg-1") {
		t.Fatal("Delete() = false, want true")
	}
	raw := ledger.RawView().Messages
	if len(raw) != 1 || raw[0].ID != "msg-2" {
		t.Errorf("RawView() after Delete = %+v", raw)
	}
	if ledger.Delete("msg-1") {
		t.Error("second Delete() = true, want false")
	}
}

func TestNewLedger_OwnsItsRecord(t *testing.T) {
	vs := testutil.NewTestVersionStore()
	vs.SetFile("a.txt", "x")
	record := note.NewRecord("a.txt")
	ledger := note.NewLedger(record, vs, testutil.FixedClock(), testutil.NewStubIDGenerator())

	if _, err := ledger.Append(0, "note"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(record.Messages) != 0 {
		t.Error("Append() mutated the caller's record")
	}

	view := ledger.RawView()
	view.Messages[0].Body = "tampered"
	if ledger.RawView().Messages[0].Body != "note" {
		t.Error("RawView() exposes the ledger's internal state")
	}
}
