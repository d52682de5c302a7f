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

// Package domain exposes the per-VM facts that device assignment depends on:
// the virtualization kind, the running device-model version and the helper
// (stub) domain hosting the device model, if any.
package domain

import (
	"fmt"
)

// Kind is the virtualization kind of a VM.
type Kind int

const (
	KindUnknown Kind = iota
	KindPV
	KindHVM
	KindPVH
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindPV:      "pv",
	KindHVM:     "hvm",
	KindPVH:     "pvh",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind decodes a stored kind name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if k != KindUnknown && name == s {
			return k, nil
		}
	}

	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DeviceModelVersion identifies the device-model generation running for a VM.
type DeviceModelVersion int

const (
	DeviceModelUnknown DeviceModelVersion = iota
	DeviceModelNone
	DeviceModelQemuXen
	DeviceModelQemuXenTraditional
)

var deviceModelNames = map[DeviceModelVersion]string{
	DeviceModelUnknown:            "unknown",
	DeviceModelNone:               "none",
	DeviceModelQemuXen:            "qemu_xen",
	DeviceModelQemuXenTraditional: "qemu_xen_traditional",
}

func (v DeviceModelVersion) String() string {
	if name, ok := deviceModelNames[v]; ok {
		return name
	}

	return fmt.Sprintf("DeviceModelVersion(%d)", int(v))
}

// ParseDeviceModelVersion decodes a stored device-model version name.
func ParseDeviceModelVersion(s string) (DeviceModelVersion, error) {
	for v, name := range deviceModelNames {
		if v != DeviceModelUnknown && name == s {
			return v, nil
		}
	}

	return DeviceModelUnknown, fmt.Errorf("%w: %q", ErrUnknownDeviceModel, s)
}

// Info is the set of facts registered for one VM.
type Info struct {
	Kind               Kind
	DeviceModelVersion DeviceModelVersion
	// HelperDomID is the stub domain running the device model; 0 means none.
	HelperDomID uint32
}
