// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jeranaias/genchat/internal/util"
)

// FileStore keeps each key in its own JSON file under Dir.
type FileStore struct {
	// Dir is the directory holding the value files.
	Dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, &StoreError{Backend: string(BackendFile), Op: "open", Err: err}
		}
		dir = filepath.Join(home, ".genchat", "data")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &StoreError{Backend: string(BackendFile), Op: "open", Err: err}
	}
	return &FileStore{Dir: dir}, nil
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Get reads the file for key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, &StoreError{Backend: string(BackendFile), Op: "get", Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Backend: string(BackendFile), Op: "get", Key: key, Err: err}
	}
	return data, nil
}

// Put atomically replaces the file for key.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return &StoreError{Backend: string(BackendFile), Op: "put", Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Transcripts are private to the user
	if err := util.AtomicWriteFile(s.Path(key), value, 0600); err != nil {
		return &StoreError{Backend: string(BackendFile), Op: "put", Key: key, Err: err}
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
