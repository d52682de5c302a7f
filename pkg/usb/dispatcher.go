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
	"fmt"

	"github.com/carverauto/vmusb/pkg/domain"
	"github.com/carverauto/vmusb/pkg/logger"
)

// Action is the hot-plug direction.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}

	return "add"
}

// ResolveProtocol turns ProtocolAuto into the protocol used for a guest of
// the given kind. Auto stays unresolved for other kinds; explicit protocols
// pass through.
func ResolveProtocol(requested Protocol, kind domain.Kind) Protocol {
	if requested != ProtocolAuto {
		return requested
	}

	switch kind {
	case domain.KindPV:
		return ProtocolPV
	case domain.KindHVM:
		return ProtocolDeviceModel
	default:
		return ProtocolAuto
	}
}

// Dispatcher routes hot-plug requests to a Backend. Routing a protocol and
// having a working implementation for it are separate questions: PV and
// the traditional device model route but fail with ErrNotImplemented.
type Dispatcher struct {
	domains DomainInfo
	qemuXen Backend
	logger  logger.Logger
}

// NewDispatcher returns a Dispatcher that drives qemu-xen through dm.
func NewDispatcher(domains DomainInfo, dm DeviceModel, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		domains: domains,
		qemuXen: &qemuXenBackend{dm: dm},
		logger:  log,
	}
}

// Routable reports whether a resolved protocol has a route.
func (*Dispatcher) Routable(p Protocol) bool {
	return p == ProtocolPV || p == ProtocolDeviceModel
}

// Execute performs action for rec over protocol p. Every failure wraps
// ErrBackend.
func (d *Dispatcher) Execute(ctx context.Context, p Protocol, action Action, rec *Record) error {
	backend, err := d.route(ctx, p, rec.TargetDomID)
	if err != nil {
		return err
	}

	switch action {
	case ActionAdd:
		err = backend.AddUSB(ctx, rec.TargetDomID, rec)
	case ActionRemove:
		err = backend.RemoveUSB(ctx, rec.TargetDomID, rec)
	default:
		err = fmt.Errorf("unknown action %d", int(action))
	}

	if err != nil {
		return fmt.Errorf("%w: %s %s on domain %d: %w", ErrBackend, action, rec.Device, rec.TargetDomID, err)
	}

	return nil
}

func (d *Dispatcher) route(ctx context.Context, p Protocol, domid uint32) (Backend, error) {
	switch p {
	case ProtocolPV:
		return notImplemented("pv protocol"), nil
	case ProtocolDeviceModel:
	default:
		return nil, fmt.Errorf("%w: no route for protocol %s", ErrBackend, p)
	}

	version, err := d.domains.DeviceModelVersion(ctx, domid)
	if err != nil {
		return nil, fmt.Errorf("%w: device model of domain %d: %w", ErrBackend, domid, err)
	}

	d.logger.Debug().
		Uint32("domid", domid).
		Str("device_model", version.String()).
		Msg("Routing to device model")

	switch version {
	case domain.DeviceModelQemuXen:
		return d.qemuXen, nil
	case domain.DeviceModelQemuXenTraditional:
		return notImplemented("qemu-xen-traditional device model"), nil
	default:
		return nil, fmt.Errorf("%w: no usb support in device model %s", ErrBackend, version)
	}
}

// qemuXenBackend hot-plugs host devices over QMP.
type qemuXenBackend struct {
	dm DeviceModel
}

func (b *qemuXenBackend) AddUSB(ctx context.Context, domid uint32, rec *Record) error {
	switch dev := rec.Device.(type) {
	case HostDev:
		return b.dm.AddHostDevice(ctx, domid, dev.NodeName(), dev.Bus, dev.Addr)
	default:
		return fmt.Errorf("%w: device type %s", ErrNotImplemented, rec.Device.Type())
	}
}

func (b *qemuXenBackend) RemoveUSB(ctx context.Context, domid uint32, rec *Record) error {
	return b.dm.RemoveDevice(ctx, domid, rec.Device.NodeName())
}

// notImplemented is a Backend for routes without an implementation.
type notImplemented string

func (n notImplemented) AddUSB(context.Context, uint32, *Record) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, string(n))
}

func (n notImplemented) RemoveUSB(context.Context, uint32, *Record) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, string(n))
}
