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

package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/carverauto/vmusb/pkg/store"
)

const (
	keyType      = "type"
	keyDMVersion = "dm-version"
	keyDMDomID   = "dm-domid"
)

// Path returns the store namespace of a VM.
func Path(domid uint32) string {
	return fmt.Sprintf("/libxl/%d", domid)
}

// Provider reads and records VM facts in the store.
type Provider struct {
	store store.Store
}

// NewProvider returns a Provider backed by s.
func NewProvider(s store.Store) *Provider {
	return &Provider{store: s}
}

// Kind returns the virtualization kind of domid.
func (p *Provider) Kind(ctx context.Context, domid uint32) (Kind, error) {
	value, err := store.Read(ctx, p.store, store.Join(Path(domid), keyType))
	if errors.Is(err, store.ErrNotFound) {
		return KindUnknown, fmt.Errorf("%w: %d", ErrNotRegistered, domid)
	}

	if err != nil {
		return KindUnknown, fmt.Errorf("read kind of domain %d: %w", domid, err)
	}

	return ParseKind(value)
}

// DeviceModelVersion returns the device model running for domid. A VM
// without a recorded version predates versioning and runs the
// traditional device model.
func (p *Provider) DeviceModelVersion(ctx context.Context, domid uint32) (DeviceModelVersion, error) {
	value, err := store.Read(ctx, p.store, store.Join(Path(domid), keyDMVersion))
	if errors.Is(err, store.ErrNotFound) {
		return DeviceModelQemuXenTraditional, nil
	}

	if err != nil {
		return DeviceModelUnknown, fmt.Errorf("read device model of domain %d: %w", domid, err)
	}

	return ParseDeviceModelVersion(value)
}

// HelperDomID returns the stub domain hosting the device model of domid,
// or 0 when the device model runs in the control domain.
func (p *Provider) HelperDomID(ctx context.Context, domid uint32) (uint32, error) {
	value, err := store.Read(ctx, p.store, store.Join(Path(domid), keyDMDomID))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read helper of domain %d: %w", domid, err)
	}

	helper, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHelper, value)
	}

	return uint32(helper), nil
}

// Register records info for domid in a single transaction.
func (p *Provider) Register(ctx context.Context, domid uint32, info Info) error {
	if info.Kind == KindUnknown {
		return fmt.Errorf("%w: %s", ErrUnknownKind, info.Kind)
	}

	if info.DeviceModelVersion == DeviceModelUnknown {
		return fmt.Errorf("%w: %s", ErrUnknownDeviceModel, info.DeviceModelVersion)
	}

	tx, err := p.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Abort()

	err = tx.WriteMany(ctx, Path(domid), []store.KeyValue{
		{Key: keyType, Value: info.Kind.String()},
		{Key: keyDMVersion, Value: info.DeviceModelVersion.String()},
		{Key: keyDMDomID, Value: strconv.FormatUint(uint64(info.HelperDomID), 10)},
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
