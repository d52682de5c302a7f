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
)

// Read returns the value at path outside of any caller transaction.
func Read(ctx context.Context, s Store, path string) (string, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Abort()

	return tx.Read(ctx, path)
}

// Directory lists the children of path outside of any caller transaction.
func Directory(ctx context.Context, s Store, path string) ([]string, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Abort()

	return tx.Directory(ctx, path)
}
