package handoff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const slotExt = ".json"

// FileStore keeps one file per slot inside a directory. Writes go through a
// temp file and rename so readers never see a partial value.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store rooted there
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("handoff directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create handoff directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing key
func (fs *FileStore) Path(key string) string {
	return filepath.Join(fs.dir, key+slotExt)
}

// Put atomically replaces the slot file
func (fs *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close slot file: %w", err)
	}

	if err := os.Rename(tmpName, fs.Path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to publish slot: %w", err)
	}
	return nil
}

// Get reads the slot file
func (fs *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - key is validated and joined under the store directory
	data, err := os.ReadFile(fs.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return data, nil
}

// Take moves the slot file aside before reading it, so two concurrent
// readers cannot both receive the value.
func (fs *FileStore) Take(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claimed := filepath.Join(fs.dir, "."+key+"-"+uuid.NewString()+".taken")
	if err := os.Rename(fs.Path(key), claimed); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}
	defer func() { _ = os.Remove(claimed) }()

	// #nosec G304 - claimed path is generated under the store directory
	data, err := os.ReadFile(claimed)
	if err != nil {
		return nil, fmt.Errorf("failed to read claimed slot: %w", err)
	}
	return data, nil
}

// Delete removes the slot file
func (fs *FileStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(fs.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

// Close is a no-op
func (fs *FileStore) Close() error {
	return nil
}
