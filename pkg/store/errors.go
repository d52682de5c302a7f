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
	"errors"
)

var (
	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("store: path not found")
	// ErrExists is returned by Mkdir when the path already exists.
	ErrExists = errors.New("store: path already exists")
	// ErrConflict is returned by Commit when another transaction modified
	// data this transaction depends on. The caller should restart.
	ErrConflict = errors.New("store: transaction conflict")
	// ErrInvalidPath is returned for relative paths or paths above a partition.
	ErrInvalidPath = errors.New("store: invalid path")
	// ErrCrossPartition is returned when a transaction writes to more than one partition.
	ErrCrossPartition = errors.New("store: transaction spans multiple partitions")
	// ErrTransactionDone is returned when a committed or aborted transaction is reused.
	ErrTransactionDone = errors.New("store: transaction already finished")
	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("store: closed")

	errNATSURLRequired = errors.New("store: nats url is required")
	errBucketRequired  = errors.New("store: bucket is required")
)
