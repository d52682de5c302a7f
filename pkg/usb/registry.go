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

	"github.com/carverauto/vmusb/pkg/store"
)

// ListAssigned returns every device record stored for domid, read from one
// consistent snapshot. A VM without a usb directory has no records. Any
// unreadable or malformed record fails the whole call with ErrStore.
func ListAssigned(ctx context.Context, s store.Store, domid uint32) ([]*Record, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", ErrStore, err)
	}
	defer tx.Abort()

	return listAssigned(ctx, tx, domid)
}

func listAssigned(ctx context.Context, tx store.Transaction, domid uint32) ([]*Record, error) {
	dir := usbPath(domid)

	names, err := tx.Directory(ctx, dir)
	if errors.Is(err, store.ErrNotFound) {
		return []*Record{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStore, dir, err)
	}

	records := make([]*Record, 0, len(names))

	for _, name := range names {
		nodePath := store.Join(dir, name)

		rec, err := decodeRecord(domid, func(field string) (string, error) {
			return tx.Read(ctx, store.Join(nodePath, field))
		})
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrStore, nodePath, err)
		}

		records = append(records, rec)
	}

	return records, nil
}
