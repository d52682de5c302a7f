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

package usb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/vmusb/pkg/domain"
	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/carverauto/vmusb/pkg/store"
)

// flakyStore wraps a store and makes commits fail. conflicts commits are
// preceded by a competing write to the same partition, so they report a
// genuine store.ErrConflict. After that, commitErr (if set) is returned for
// every commit.
type flakyStore struct {
	store.Store

	mu        sync.Mutex
	conflicts int
	commitErr error
	commits   int
}

func (f *flakyStore) Begin(ctx context.Context) (store.Transaction, error) {
	tx, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &flakyTx{Transaction: tx, owner: f}, nil
}

func (f *flakyStore) commitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.commits
}

type flakyTx struct {
	store.Transaction
	owner   *flakyStore
	touched string
}

func (t *flakyTx) Mkdir(ctx context.Context, p string) error {
	t.touched = p

	return t.Transaction.Mkdir(ctx, p)
}

func (t *flakyTx) Remove(ctx context.Context, p string) error {
	t.touched = p

	return t.Transaction.Remove(ctx, p)
}

func (t *flakyTx) Commit(ctx context.Context) error {
	f := t.owner

	f.mu.Lock()
	f.commits++
	inject := f.conflicts > 0
	if inject {
		f.conflicts--
	}
	commitErr := f.commitErr
	f.mu.Unlock()

	if inject && t.touched != "" {
		// Bump the partition revision behind this transaction's back.
		rival, err := f.Store.Begin(ctx)
		if err != nil {
			return err
		}

		if err := rival.Write(ctx, store.Join(t.touched, "..", "..", "rival"), "x"); err != nil {
			return err
		}

		if err := rival.Commit(ctx); err != nil {
			return err
		}
	}

	if !inject && commitErr != nil {
		t.Transaction.Abort()

		return commitErr
	}

	return t.Transaction.Commit(ctx)
}

// ctxStore fails transactions whose context has ended, like a networked
// engine would.
type ctxStore struct {
	store.Store
}

func (c ctxStore) Begin(ctx context.Context) (store.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := c.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return ctxTx{Transaction: tx}, nil
}

type ctxTx struct {
	store.Transaction
}

func (t ctxTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		t.Transaction.Abort()

		return err
	}

	return t.Transaction.Commit(ctx)
}

var errInjected = errors.New("injected commit failure")

func newTestWriter(s store.Store) *Writer {
	w := NewWriter(s, logger.NewTestLogger())
	w.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	return w
}

func registerDomain(t *testing.T, s store.Store, domid uint32, info domain.Info) {
	t.Helper()

	require.NoError(t, domain.NewProvider(s).Register(context.Background(), domid, info))
}

func hvm() domain.Info {
	return domain.Info{Kind: domain.KindHVM, DeviceModelVersion: domain.DeviceModelQemuXen}
}

func hostdev(bus, addr uint8) Descriptor {
	return Descriptor{Protocol: ProtocolAuto, BackendDomID: BackendDefault, Device: HostDev{Bus: bus, Addr: addr}}
}

// seedRecord writes a record directly, bypassing the workflow.
func seedRecord(t *testing.T, s store.Store, domid uint32, rec *Record) {
	t.Helper()

	require.NoError(t, newTestWriter(s).Persist(context.Background(), domid, rec))
}
