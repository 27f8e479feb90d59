package versionstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"

	"gitnote/internal/note"
)

// ObjectStore is a hand-rolled loose object store. Objects are framed and
// hashed exactly as git does, zlib-compressed, and sharded by id:
//
//	<objects>/
//	  ab/
//	    cdef...   (zlib("blob <len>\0<content>"))
//
// Pointing objects at <root>/.git/objects makes it interoperate with git.
type ObjectStore struct {
	note.Differ
	root       string
	objectsDir string
	charset    *Charset
}

// NewObjectStore creates an ObjectStore reading working-tree files under root
// and keeping objects in objectsDir.
func NewObjectStore(root, objectsDir string, charset *Charset, differ note.Differ) (*ObjectStore, error) {
	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}
	return &ObjectStore{
		Differ:     differ,
		root:       root,
		objectsDir: objectsDir,
		charset:    charset,
	}, nil
}

// CurrentContent reads the working-tree file, stores it as a blob if it is
// not stored yet, and returns it.
func (s *ObjectStore) CurrentContent(path string) (*note.Blob, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	id := BlobID(data)
	if err := s.putObject(id, data); err != nil {
		return nil, fmt.Errorf("storing blob for %s: %w", path, err)
	}

	content, err := s.charset.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &note.Blob{ID: id, Path: path, Content: content}, nil
}

// ContentByID inflates a stored blob and returns its content.
func (s *ObjectStore) ContentByID(contentID string) (string, error) {
	objectPath, err := s.objectPath(contentID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", note.ErrContentUnavailable, err)
	}
	compressed, err := os.ReadFile(objectPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: blob %s: %w", note.ErrContentUnavailable, contentID, err)
	}
	if err != nil {
		return "", fmt.Errorf("reading blob %s: %w", contentID, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("%w: blob %s: %w", note.ErrContentUnavailable, contentID, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("%w: inflating blob %s: %w", note.ErrContentUnavailable, contentID, err)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 || !bytes.HasPrefix(raw, []byte("blob ")) {
		return "", fmt.Errorf("%w: object %s is not a blob", note.ErrContentUnavailable, contentID)
	}
	return s.charset.Decode(raw[nul+1:])
}

func (s *ObjectStore) objectPath(id string) (string, error) {
	if len(id) < 3 {
		return "", errors.New("object id too short: " + id)
	}
	return filepath.Join(s.objectsDir, id[:2], id[2:]), nil
}

// putObject writes the compressed blob unless it already exists.
// Writes go through a temp file and rename so readers never see a partial object.
func (s *ObjectStore) putObject(id string, data []byte) error {
	destPath, err := s.objectPath(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	zw := zlib.NewWriter(tmpFile)
	if _, err := zw.Write(blobHeader(len(data))); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to finish object: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ note.VersionStore = (*ObjectStore)(nil)
