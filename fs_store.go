package securestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/absfs/absfs"
)

// FSStore is a Store that keeps each record in its own file under a root
// directory of an absfs.FileSystem. File names are the hex encoded storage
// keys. Batches are applied in order and are not atomic: a failing
// operation leaves the preceding ones applied.
type FSStore struct {
	fs   absfs.FileSystem
	root string
	perm os.FileMode
	mu   sync.RWMutex
}

// NewFSStore creates a store rooted at dir on fs
func NewFSStore(fs absfs.FileSystem, dir string) (*FSStore, error) {
	if fs == nil {
		return nil, fmt.Errorf("base filesystem cannot be nil")
	}
	if dir == "" {
		dir = "/"
	}
	return &FSStore{fs: fs, root: dir, perm: 0600}, nil
}

func (s *FSStore) recordPath(key []byte) string {
	return path.Join(s.root, hex.EncodeToString(key))
}

// Open creates the root directory if needed
func (s *FSStore) Open(ctx context.Context) error {
	if err := s.fs.MkdirAll(s.root, 0700); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", s.root, err)
	}
	return nil
}

// Close is a no-op; files are closed after every operation
func (s *FSStore) Close(ctx context.Context) error {
	return nil
}

// Get reads the record for key
func (s *FSStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.fs.Open(s.recordPath(key))
	if err != nil {
		if isNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// Put writes the record for key, replacing any previous content
func (s *FSStore) Put(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, value)
}

// Delete removes the record for key
func (s *FSStore) Delete(ctx context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(key)
}

// Batch applies ops in order, stopping at the first failure
func (s *FSStore) Batch(ctx context.Context, ops []BatchOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, op := range ops {
		var err error
		switch op.Type {
		case OpPut:
			err = s.write(op.Key, op.Value)
		case OpDelete:
			err = s.remove(op.Key)
		default:
			err = &ConfigError{Field: "type", Value: op.Type, Message: "unknown operation type", Err: ErrUnsupportedOpType}
		}
		if err != nil {
			return fmt.Errorf("batch operation %d: %w", i, err)
		}
	}
	return nil
}

func (s *FSStore) write(key, value []byte) error {
	f, err := s.fs.OpenFile(s.recordPath(key), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FSStore) remove(key []byte) error {
	err := s.fs.Remove(s.recordPath(key))
	if err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)
}
