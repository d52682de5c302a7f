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

//go:generate mockgen -destination=mock_usb.go -package=usb github.com/carverauto/vmusb/pkg/usb DomainInfo,DeviceModel

import (
	"context"

	"github.com/carverauto/vmusb/pkg/domain"
)

// DomainInfo provides the VM facts consulted before touching a device.
type DomainInfo interface {
	Kind(ctx context.Context, domid uint32) (domain.Kind, error)
	DeviceModelVersion(ctx context.Context, domid uint32) (domain.DeviceModelVersion, error)
	HelperDomID(ctx context.Context, domid uint32) (uint32, error)
}

// DeviceModel is the control channel of a running qemu-xen device model.
type DeviceModel interface {
	AddHostDevice(ctx context.Context, domid uint32, id string, bus, addr uint8) error
	RemoveDevice(ctx context.Context, domid uint32, id string) error
}

// Backend hot-plugs devices for one protocol and device-model generation.
type Backend interface {
	AddUSB(ctx context.Context, domid uint32, rec *Record) error
	RemoveUSB(ctx context.Context, domid uint32, rec *Record) error
}
