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

	"github.com/google/uuid"
)

// Operation tracks one asynchronous attach or detach.
type Operation struct {
	id     string
	kind   string
	domid  uint32
	done   chan struct{}
	err    error
	notify func(error)
}

func newOperation(kind string, domid uint32, notify func(error)) *Operation {
	return &Operation{
		id:     uuid.NewString(),
		kind:   kind,
		domid:  domid,
		done:   make(chan struct{}),
		notify: notify,
	}
}

// ID identifies the operation in logs.
func (o *Operation) ID() string { return o.id }

// DomID is the target VM.
func (o *Operation) DomID() uint32 { return o.domid }

// Done is closed after the completion callback has returned.
func (o *Operation) Done() <-chan struct{} { return o.done }

// Err returns the result once Done is closed, and nil before that.
func (o *Operation) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the operation completes or ctx ends.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// complete is called exactly once, from the operation's goroutine.
func (o *Operation) complete(err error) {
	o.err = err

	if o.notify != nil {
		o.notify(err)
		o.notify = nil
	}

	close(o.done)
}
