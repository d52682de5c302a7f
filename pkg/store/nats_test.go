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
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	t.Cleanup(srv.Shutdown)

	return srv
}

func newTestNATSStore(t *testing.T) *NATSStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping JetStream test in short mode")
	}

	srv := runJetStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewNATSStore(ctx, NATSOptions{URL: srv.ClientURL(), Bucket: "vmusb-test"})
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestNATSStoreRoundTrip(t *testing.T) {
	s := newTestNATSStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Mkdir(ctx, "/libxl/5/usb/hostdev-0001-0002"))
	require.NoError(t, tx.WriteMany(ctx, "/libxl/5/usb/hostdev-0001-0002", []KeyValue{
		{Key: "type", Value: "hostdev"},
		{Key: "hostbus", Value: "1"},
	}))
	require.NoError(t, tx.Commit(ctx))

	names, err := Directory(ctx, s, "/libxl/5/usb")
	require.NoError(t, err)
	assert.Equal(t, []string{"hostdev-0001-0002"}, names)

	value, err := Read(ctx, s, "/libxl/5/usb/hostdev-0001-0002/hostbus")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	_, err = Read(ctx, s, "/libxl/6/usb")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNATSStoreCommitConflict(t *testing.T) {
	s := newTestNATSStore(t)
	ctx := context.Background()

	// Both transactions start from an absent partition, so the loser's
	// create is rejected.
	first, err := s.Begin(ctx)
	require.NoError(t, err)
	second, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, first.Write(ctx, "/libxl/1/usb/a", "1"))
	require.NoError(t, second.Write(ctx, "/libxl/1/usb/b", "2"))
	require.NoError(t, first.Commit(ctx))
	require.ErrorIs(t, second.Commit(ctx), ErrConflict)

	// Same race against an existing revision exercises Update.
	third, err := s.Begin(ctx)
	require.NoError(t, err)
	fourth, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, third.Write(ctx, "/libxl/1/usb/c", "3"))
	require.NoError(t, fourth.Remove(ctx, "/libxl/1/usb/a"))
	require.NoError(t, third.Commit(ctx))
	require.ErrorIs(t, fourth.Commit(ctx), ErrConflict)

	names, err := Directory(ctx, s, "/libxl/1/usb")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestNATSStoreRequiresOptions(t *testing.T) {
	_, err := NewNATSStore(context.Background(), NATSOptions{Bucket: "x"})
	require.ErrorIs(t, err, errNATSURLRequired)

	_, err = NewNATSStore(context.Background(), NATSOptions{URL: "nats://127.0.0.1:4222"})
	require.ErrorIs(t, err, errBucketRequired)
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "libxl.5", partitionKey("/libxl/5"))
}
