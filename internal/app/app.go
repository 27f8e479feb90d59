package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gitnote/internal/config"
	"gitnote/internal/encryption"
	"gitnote/internal/fs"
	"gitnote/internal/note"
	"gitnote/internal/store"
	"gitnote/internal/versionstore"
)

// Options tunes a NoteApp. Zero values give real clocks and UUIDs.
type Options struct {
	Operation   string   // command being run, e.g. "add"
	Parameters  []string // raw command-line arguments, for the log
	Verbose     bool     // mirror log lines to stderr
	Clock       note.Clock
	IDGenerator note.IDGenerator
}

// NoteApp is the application layer between the CLI and NoteService.
// It constructs all dependencies from config, accepts raw paths and
// 1-based line numbers, and releases resources on Close.
type NoteApp struct {
	resolver *fs.PathResolver
	backend  store.Backend
	repo     *note.Repository
	service  *note.NoteService
	logger   note.Logger
	op       *Operation
	logFile  *os.File
}

// Listing summarises the stored record of one file.
type Listing struct {
	Reference string
	Notes     int
}

// NewNoteApp creates a fully wired NoteApp for the repository described by env.
// The caller must call Close when done.
func NewNoteApp(ctx context.Context, env *Environment, cfg *config.Config, opts Options) (*NoteApp, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = note.RealClock{}
	}
	idgen := opts.IDGenerator
	if idgen == nil {
		idgen = note.UUIDGenerator{}
	}

	op := NewOperation(opts.Operation, opts.Parameters, clock.Now())
	logger, logFile, err := newLogger(env.LogDir, op.ID, level, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	vs, err := versionstore.NewVersionStoreFromConfig(cfg, env.Resolver.Root())
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating version store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	backend, err := store.NewRecordStoreFromConfig(ctx, cfg.Storage, enc)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating record store: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	repo := note.NewRepository(backend)
	adapter.Debug("operation started", "op", op.Name, "params", op.Parameters,
		"version_store", cfg.VersionStore.Type, "storage", cfg.Storage.Type, "encryption", cfg.Encryption.Type)

	return &NoteApp{
		resolver: env.Resolver,
		backend:  backend,
		repo:     repo,
		service:  note.NewNoteService(repo, vs, adapter, clock, idgen),
		logger:   adapter,
		op:       op,
		logFile:  logFile,
	}, nil
}

// Add anchors a note to a 1-based line of the file at rawPath.
// Returns the repository-relative path the note was stored under.
func (a *NoteApp) Add(rawPath string, line int, body string) (string, error) {
	rel, index, err := a.target(rawPath, line)
	if err != nil {
		return "", err
	}
	if _, err := a.service.Add(rel, index, body); err != nil {
		return "", err
	}
	return rel, nil
}

// Read returns the notes of the file at rawPath positioned on its current content.
func (a *NoteApp) Read(rawPath string) (*note.Annotated, error) {
	rel, err := a.resolve(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.Read(rel)
}

// Edit replaces the body of the note on a 1-based line.
func (a *NoteApp) Edit(rawPath string, line int, body string) (string, error) {
	rel, index, err := a.target(rawPath, line)
	if err != nil {
		return "", err
	}
	return rel, a.service.Edit(rel, index, body)
}

// Delete removes the note on a 1-based line.
func (a *NoteApp) Delete(rawPath string, line int) (string, error) {
	rel, index, err := a.target(rawPath, line)
	if err != nil {
		return "", err
	}
	return rel, a.service.Delete(rel, index)
}

// List returns every stored record, sorted by path. Counts are of stored
// messages, including ones that no longer resolve.
func (a *NoteApp) List() ([]Listing, error) {
	identities, err := a.backend.List()
	if err != nil {
		return nil, fmt.Errorf("%w: listing records: %w", note.ErrStorage, err)
	}

	listings := make([]Listing, 0, len(identities))
	for _, identity := range identities {
		record, err := a.repo.Get(identity)
		if errors.Is(err, note.ErrNoRecord) {
			continue
		}
		if err != nil {
			return nil, err
		}
		listings = append(listings, Listing{Reference: record.Reference, Notes: len(record.Messages)})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Reference < listings[j].Reference })
	return listings, nil
}

// Root is the repository root every path is resolved against.
func (a *NoteApp) Root() string {
	return a.resolver.Root()
}

// Fail marks the current operation as failed. Close logs the outcome.
func (a *NoteApp) Fail(err error) {
	a.op.Finish(err)
	a.logger.Error("operation failed", "op", a.op.Name, "error", err)
}

// Close finalizes the operation and closes all resources.
func (a *NoteApp) Close() error {
	if !a.op.Finished() {
		a.op.Finish(nil)
	}
	a.logger.Info("operation finished", "op", a.op.Name, "status", a.op.Status,
		"elapsed", time.Since(a.op.StartedAt).Round(time.Millisecond))

	var firstErr error
	if err := a.backend.Close(); err != nil {
		firstErr = fmt.Errorf("closing record store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}

func (a *NoteApp) resolve(rawPath string) (string, error) {
	rel, err := a.resolver.Resolve(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return rel, nil
}

func (a *NoteApp) target(rawPath string, line int) (string, int, error) {
	if line < 1 {
		return "", 0, fmt.Errorf("%w: line numbers start at 1, got %d", note.ErrOutOfRange, line)
	}
	rel, err := a.resolve(rawPath)
	if err != nil {
		return "", 0, err
	}
	return rel, line - 1, nil
}
