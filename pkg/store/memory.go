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

package store

import (
	"context"
	"sync"
)

type memoryPartition struct {
	doc      *document
	revision uint64
}

// MemoryStore is a process-local Store. Commits are serializable.
type MemoryStore struct {
	mu         sync.Mutex
	partitions map[string]*memoryPartition
	closed     bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{partitions: make(map[string]*memoryPartition)}
}

func (m *MemoryStore) Begin(_ context.Context) (Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	return newTransaction(m), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *MemoryStore) load(_ context.Context, partition string) (*document, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, 0, ErrClosed
	}

	p, ok := m.partitions[partition]
	if !ok {
		return newDocument(), 0, nil
	}

	return p.doc.clone(), p.revision, nil
}

func (m *MemoryStore) revisionLocked(partition string) uint64 {
	if p, ok := m.partitions[partition]; ok {
		return p.revision
	}

	return 0
}

func (m *MemoryStore) commit(_ context.Context, reads map[string]uint64, write *stagedWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	for partition, rev := range reads {
		if m.revisionLocked(partition) != rev {
			return ErrConflict
		}
	}

	if write == nil {
		return nil
	}

	current := m.revisionLocked(write.partition)
	if current != write.revision {
		return ErrConflict
	}

	m.partitions[write.partition] = &memoryPartition{
		doc:      write.doc.clone(),
		revision: current + 1,
	}

	return nil
}
