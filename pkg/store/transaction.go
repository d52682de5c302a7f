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
	"fmt"
)

// engine is the persistence backend behind a transaction.
type engine interface {
	// load returns a private copy of a partition and its revision.
	// A partition that was never written has revision 0.
	load(ctx context.Context, partition string) (*document, uint64, error)

	// commit atomically checks that every partition in reads is still at the
	// recorded revision and, if write is non-nil, replaces that partition.
	commit(ctx context.Context, reads map[string]uint64, write *stagedWrite) error
}

type stagedWrite struct {
	partition string
	doc       *document
	revision  uint64
}

type view struct {
	doc      *document
	revision uint64
}

type transaction struct {
	engine  engine
	views   map[string]*view
	written string
	done    bool
}

var _ Transaction = (*transaction)(nil)

func newTransaction(e engine) *transaction {
	return &transaction{
		engine: e,
		views:  make(map[string]*view),
	}
}

func (t *transaction) view(ctx context.Context, partition string) (*view, error) {
	if t.done {
		return nil, ErrTransactionDone
	}

	if v, ok := t.views[partition]; ok {
		return v, nil
	}

	doc, rev, err := t.engine.load(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("load partition %s: %w", partition, err)
	}

	v := &view{doc: doc, revision: rev}
	t.views[partition] = v

	return v, nil
}

func (t *transaction) writable(ctx context.Context, p string) (*view, string, error) {
	partition, rel, err := splitPath(p)
	if err != nil {
		return nil, "", err
	}

	if t.written != "" && t.written != partition {
		return nil, "", fmt.Errorf("%w: %s and %s", ErrCrossPartition, t.written, partition)
	}

	v, err := t.view(ctx, partition)
	if err != nil {
		return nil, "", err
	}

	t.written = partition

	return v, rel, nil
}

func (t *transaction) readable(ctx context.Context, p string) (*view, string, error) {
	partition, rel, err := splitPath(p)
	if err != nil {
		return nil, "", err
	}

	v, err := t.view(ctx, partition)
	if err != nil {
		return nil, "", err
	}

	return v, rel, nil
}

func (t *transaction) Exists(ctx context.Context, p string) (bool, error) {
	v, rel, err := t.readable(ctx, p)
	if err != nil {
		return false, err
	}

	return v.doc.exists(rel), nil
}

func (t *transaction) Read(ctx context.Context, p string) (string, error) {
	v, rel, err := t.readable(ctx, p)
	if err != nil {
		return "", err
	}

	value, ok := v.doc.read(rel)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	return value, nil
}

func (t *transaction) Directory(ctx context.Context, p string) ([]string, error) {
	v, rel, err := t.readable(ctx, p)
	if err != nil {
		return nil, err
	}

	names, ok := v.doc.children(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	return names, nil
}

func (t *transaction) Mkdir(ctx context.Context, p string) error {
	v, rel, err := t.writable(ctx, p)
	if err != nil {
		return err
	}

	if v.doc.exists(rel) {
		return fmt.Errorf("%w: %s", ErrExists, p)
	}

	v.doc.write(rel, "")

	return nil
}

func (t *transaction) Write(ctx context.Context, p, value string) error {
	v, rel, err := t.writable(ctx, p)
	if err != nil {
		return err
	}

	v.doc.write(rel, value)

	return nil
}

func (t *transaction) WriteMany(ctx context.Context, base string, entries []KeyValue) error {
	partition, _, err := splitPath(base)
	if err != nil {
		return err
	}

	rels := make([]string, len(entries))

	for i, e := range entries {
		entryPartition, rel, err := splitPath(Join(base, e.Key))
		if err != nil {
			return err
		}

		if entryPartition != partition {
			return fmt.Errorf("%w: %s escapes %s", ErrInvalidPath, e.Key, base)
		}

		rels[i] = rel
	}

	v, _, err := t.writable(ctx, base)
	if err != nil {
		return err
	}

	for i, e := range entries {
		v.doc.write(rels[i], e.Value)
	}

	return nil
}

func (t *transaction) Remove(ctx context.Context, p string) error {
	v, rel, err := t.writable(ctx, p)
	if err != nil {
		return err
	}

	if !v.doc.remove(rel) {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	return nil
}

func (t *transaction) Commit(ctx context.Context) error {
	if t.done {
		return ErrTransactionDone
	}

	t.done = true

	reads := make(map[string]uint64, len(t.views))

	var write *stagedWrite

	for partition, v := range t.views {
		if partition == t.written {
			write = &stagedWrite{partition: partition, doc: v.doc, revision: v.revision}

			continue
		}

		reads[partition] = v.revision
	}

	return t.engine.commit(ctx, reads, write)
}

func (t *transaction) Abort() {
	t.done = true
	t.views = nil
}
