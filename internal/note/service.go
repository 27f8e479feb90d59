package note

import (
	"fmt"
)

// NoteService is the orchestration layer for the add, read, edit and delete
// use cases. Each call loads the record, performs at most one mutation and
// persists the raw view.
type NoteService struct {
	repository *Repository
	store      VersionStore
	logger     Logger
	clock      Clock
	idgen      IDGenerator
}

// NewNoteService creates a NoteService with the provided dependencies.
func NewNoteService(repository *Repository, store VersionStore, logger Logger, clock Clock, idgen IDGenerator) *NoteService {
	return &NoteService{
		repository: repository,
		store:      store,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
	}
}

// Annotated is a file's current content together with its resolved notes.
type Annotated struct {
	Note    *Record
	Content *Blob
}

// Add anchors a new note to line of path. Fails with ErrDuplicateAnchor if a
// valid note already resolves to that line.
func (s *NoteService) Add(path string, line int, body string) (*Message, error) {
	ledger, err := s.open(path)
	if err != nil {
		return nil, err
	}

	exists, err := ledger.ExistsAt(line)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w %d in %s: use edit instead", ErrDuplicateAnchor, line+1, path)
	}

	m, err := ledger.Append(line, body)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Save(ledger.RawView()); err != nil {
		return nil, err
	}

	s.logger.Info("note added", "path", path, "line", line, "id", m.ID)
	return m, nil
}

// Read returns the notes of path that still apply, positioned on its
// current content.
func (s *NoteService) Read(path string) (*Annotated, error) {
	ledger, err := s.open(path)
	if err != nil {
		return nil, err
	}
	resolved, content, err := ledger.ResolvedContent()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("note read", "path", path, "stored", len(ledger.RawView().Messages), "valid", len(resolved.Messages))
	return &Annotated{Note: resolved, Content: content}, nil
}

// Edit replaces the body of the note currently at line.
func (s *NoteService) Edit(path string, line int, body string) error {
	ledger, err := s.open(path)
	if err != nil {
		return err
	}
	id, err := s.findID(ledger, path, line)
	if err != nil {
		return err
	}

	ledger.Edit(id, body)
	if err := s.repository.Save(ledger.RawView()); err != nil {
		return err
	}

	s.logger.Info("note edited", "path", path, "line", line, "id", id)
	return nil
}

// Delete removes the note currently at line.
func (s *NoteService) Delete(path string, line int) error {
	ledger, err := s.open(path)
	if err != nil {
		return err
	}
	id, err := s.findID(ledger, path, line)
	if err != nil {
		return err
	}

	ledger.Delete(id)
	if err := s.repository.Save(ledger.RawView()); err != nil {
		return err
	}

	s.logger.Info("note deleted", "path", path, "line", line, "id", id)
	return nil
}

func (s *NoteService) open(path string) (*Ledger, error) {
	record, err := s.repository.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading notes for %s: %w", path, err)
	}
	return NewLedger(record, s.store, s.clock, s.idgen), nil
}

func (s *NoteService) findID(ledger *Ledger, path string, line int) (string, error) {
	id, ok, err := ledger.FindIDAt(line)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w %d in %s", ErrNotFound, line+1, path)
	}
	return id, nil
}
