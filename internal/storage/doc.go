// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable key/value storage for the genchat transcript.
//
// The transcript lives under a single fixed key and is always written in
// full; there is no merge, append, or versioning. Every backend implements
// the same Store interface so the session controller can be given any of
// them, or a MemoryStore in tests.
//
// # Backends
//
//   - file: one JSON file per key under a directory, replaced atomically (default)
//   - sqlite: a kv table in a local SQLite database (pure Go driver)
//   - redis: plain GET/SET on a prefixed key
//   - memory: in-process map, for tests and throwaway sessions
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Backend: storage.BackendFile, Dir: dataDir})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	data, err := store.Get(ctx, "chatLog")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // first run
//	}
//
// # Storage Location
//
// The file backend defaults to ~/.genchat/data/ and the sqlite backend to
// ~/.genchat/genchat.db.
package storage
