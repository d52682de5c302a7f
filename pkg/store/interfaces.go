/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package store provides a hierarchical, string-keyed store with optimistic
// transactions. Paths are absolute and slash separated. The first two path
// components name a partition (for example /libxl/5); a partition is the unit
// of conflict detection and a transaction may write to at most one partition.
package store

import (
	"context"
)

// Store is a hierarchical key/value store with optimistic transactions.
type Store interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) (Transaction, error)

	// Close releases resources held by the store.
	Close() error
}

// Transaction is a snapshot view of the store. Writes are staged locally and
// become visible to other transactions only after a successful Commit.
type Transaction interface {
	// Exists reports whether the path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the value stored at path, or ErrNotFound.
	Read(ctx context.Context, path string) (string, error)

	// Directory lists the names of the immediate children of path in
	// lexical order, or returns ErrNotFound.
	Directory(ctx context.Context, path string) ([]string, error)

	// Mkdir creates an empty node at path, including missing parents.
	// It returns ErrExists if the node already exists.
	Mkdir(ctx context.Context, path string) error

	// Write stores value at path, creating missing parents.
	Write(ctx context.Context, path, value string) error

	// WriteMany writes every entry relative to base as a single batch.
	WriteMany(ctx context.Context, base string, entries []KeyValue) error

	// Remove deletes path and everything below it, or returns ErrNotFound.
	Remove(ctx context.Context, path string) error

	// Commit publishes staged writes. It returns ErrConflict when a
	// partition read or written by this transaction changed since it was
	// first loaded.
	Commit(ctx context.Context) error

	// Abort discards staged writes. It is safe to call after Commit.
	Abort()
}

// KeyValue is one entry of a batch write.
type KeyValue struct {
	Key   string
	Value string
}
