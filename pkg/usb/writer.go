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
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/carverauto/vmusb/pkg/store"
)

const (
	commitInitialBackoff = 5 * time.Millisecond
	commitMaxBackoff     = 250 * time.Millisecond
)

// Writer stores and removes device records. A transaction that loses a
// commit race is rebuilt from scratch and retried until it commits, fails
// for another reason, or ctx ends.
type Writer struct {
	store      store.Store
	logger     logger.Logger
	newBackOff func() backoff.BackOff
}

// NewWriter returns a Writer over s.
func NewWriter(s store.Store, log logger.Logger) *Writer {
	return &Writer{
		store:      s,
		logger:     log,
		newBackOff: commitBackOff,
	}
}

func commitBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = commitInitialBackoff
	bo.MaxInterval = commitMaxBackoff
	bo.Multiplier = 1.6
	bo.RandomizationFactor = 0.5

	return bo
}

// Persist creates the record subtree of rec under domid and writes all of
// its fields in one transaction. An existing subtree is a failure.
func (w *Writer) Persist(ctx context.Context, domid uint32, rec *Record) error {
	entries, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	base := devicePath(domid, rec.Device)

	return w.transact(ctx, "persist", base, func(tx store.Transaction) error {
		if err := tx.Mkdir(ctx, base); err != nil {
			return fmt.Errorf("%w: create %s: %w", ErrStore, base, err)
		}

		if err := tx.WriteMany(ctx, base, entries); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrStore, base, err)
		}

		return nil
	})
}

// Unpersist removes the record subtree of rec under domid. A subtree that
// is already gone is not an error.
func (w *Writer) Unpersist(ctx context.Context, domid uint32, rec *Record) error {
	base := devicePath(domid, rec.Device)

	return w.transact(ctx, "unpersist", base, func(tx store.Transaction) error {
		err := tx.Remove(ctx, base)
		if errors.Is(err, store.ErrNotFound) {
			w.logger.Warn().Str("path", base).Msg("Device record already removed")

			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: remove %s: %w", ErrStore, base, err)
		}

		return nil
	})
}

func (w *Writer) transact(ctx context.Context, op, path string, apply func(tx store.Transaction) error) error {
	attempts := 0

	operation := func() (struct{}, error) {
		attempts++

		tx, err := w.store.Begin(ctx)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: begin: %w", ErrStore, err))
		}
		defer tx.Abort()

		if err := apply(tx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		err = tx.Commit(ctx)
		if errors.Is(err, store.ErrConflict) {
			return struct{}{}, err
		}

		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: commit: %w", ErrStore, err))
		}

		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(w.newBackOff()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			w.logger.Debug().
				Str("op", op).
				Str("path", path).
				Int("attempt", attempts).
				Dur("backoff", next).
				Err(err).
				Msg("Store commit conflict, retrying")
		}),
	)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrStore) || errors.Is(err, ErrValidation) {
		return err
	}

	// Retries only stop early when ctx ends.
	return fmt.Errorf("%w: %s %s abandoned after %d attempts: %w", ErrStore, op, path, attempts, err)
}
