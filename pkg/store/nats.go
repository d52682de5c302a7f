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
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSOptions configures a NATSStore.
type NATSOptions struct {
	URL       string
	Bucket    string
	Domain    string
	TLSConfig *tls.Config
}

// NATSStore keeps each partition as one JSON document in a JetStream
// key/value bucket. Commits use the entry revision for compare-and-swap.
type NATSStore struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

var _ Store = (*NATSStore)(nil)

func NewNATSStore(ctx context.Context, opts NATSOptions) (*NATSStore, error) {
	if opts.URL == "" {
		return nil, errNATSURLRequired
	}

	if opts.Bucket == "" {
		return nil, errBucketRequired
	}

	var connectOpts []nats.Option
	if opts.TLSConfig != nil {
		connectOpts = append(connectOpts, nats.Secure(opts.TLSConfig))
	}

	nc, err := nats.Connect(opts.URL, connectOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var js jetstream.JetStream
	if opts.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, opts.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      opts.Bucket,
		Description: "vmusb hierarchical store",
		History:     1,
	})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}

	return &NATSStore{nc: nc, kv: kv}, nil
}

// NewNATSStoreWithKV wraps an existing key/value handle. The caller keeps
// ownership of the underlying connection.
func NewNATSStoreWithKV(kv jetstream.KeyValue) *NATSStore {
	return &NATSStore{kv: kv}
}

func (n *NATSStore) Begin(_ context.Context) (Transaction, error) {
	if n.kv == nil {
		return nil, ErrClosed
	}

	return newTransaction(n), nil
}

func (n *NATSStore) Close() error {
	if n.nc != nil {
		n.nc.Close()
	}

	return nil
}

// partitionKey maps /libxl/5 to the bucket key libxl.5.
func partitionKey(partition string) string {
	return strings.ReplaceAll(strings.TrimPrefix(partition, "/"), "/", ".")
}

func (n *NATSStore) load(ctx context.Context, partition string) (*document, uint64, error) {
	key := partitionKey(partition)

	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return newDocument(), 0, nil
	}

	if err != nil {
		return nil, 0, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	doc, err := decodeDocument(entry.Value())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode key %s: %w", key, err)
	}

	return doc, entry.Revision(), nil
}

func (n *NATSStore) revision(ctx context.Context, partition string) (uint64, error) {
	key := partitionKey(partition)

	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return entry.Revision(), nil
}

func (n *NATSStore) commit(ctx context.Context, reads map[string]uint64, write *stagedWrite) error {
	for partition, rev := range reads {
		current, err := n.revision(ctx, partition)
		if err != nil {
			return err
		}

		if current != rev {
			return ErrConflict
		}
	}

	if write == nil {
		return nil
	}

	payload, err := write.doc.encode()
	if err != nil {
		return fmt.Errorf("failed to encode partition %s: %w", write.partition, err)
	}

	key := partitionKey(write.partition)

	if write.revision == 0 {
		_, err = n.kv.Create(ctx, key, payload)
	} else {
		_, err = n.kv.Update(ctx, key, payload, write.revision)
	}

	if isRevisionMismatch(err) {
		return ErrConflict
	}

	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func isRevisionMismatch(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}

	return false
}
