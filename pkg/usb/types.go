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

// Package usb manages host USB devices passed through to running VMs. It
// keeps the store's per-VM assignment records and the device model's
// hot-plug state in step.
package usb

import (
	"fmt"
	"math"
)

// Protocol selects how a device is presented to the guest.
type Protocol int

const (
	// ProtocolAuto picks a protocol from the guest kind.
	ProtocolAuto Protocol = iota
	// ProtocolPV uses a paravirtual frontend/backend pair.
	ProtocolPV
	// ProtocolDeviceModel plugs the device into the emulated controller.
	ProtocolDeviceModel
)

// DeviceType tags the Device variant.
type DeviceType int

const (
	DeviceTypeHostDev DeviceType = iota + 1
)

// BackendDefault requests the default backend domain (the control domain).
// It is replaced by 0 before a record is stored.
const BackendDefault uint32 = math.MaxUint32

// Device is the type-specific part of an assignment. Implementations are
// comparable values.
type Device interface {
	Type() DeviceType
	// NodeName is the store node of the device under a VM's usb directory.
	// It depends only on the device identity.
	NodeName() string
	fmt.Stringer
}

// HostDev is a physical device addressed by its host bus and address.
type HostDev struct {
	Bus  uint8
	Addr uint8
}

func (HostDev) Type() DeviceType { return DeviceTypeHostDev }

func (h HostDev) NodeName() string {
	return fmt.Sprintf("hostdev-%04x-%04x", uint16(h.Bus), uint16(h.Addr))
}

func (h HostDev) String() string {
	return fmt.Sprintf("hostdev %d:%d", h.Bus, h.Addr)
}

// Descriptor is the caller-facing description of an assignment.
type Descriptor struct {
	Protocol     Protocol
	BackendDomID uint32
	Device       Device
}

// Record is an assignment as it is validated, dispatched and stored.
type Record struct {
	Protocol     Protocol
	BackendDomID uint32
	TargetDomID  uint32
	// DMDomID is the helper domain running the device model; 0 means none.
	DMDomID uint32
	Device  Device
}
