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
	"fmt"
	"strconv"

	"github.com/carverauto/vmusb/pkg/domain"
	"github.com/carverauto/vmusb/pkg/store"
)

const (
	fieldProtocol     = "protocol"
	fieldBackendDomID = "backend_domid"
	fieldType         = "type"
	fieldHostBus      = "hostbus"
	fieldHostAddr     = "hostaddr"
)

var protocolNames = map[Protocol]string{
	ProtocolAuto:        "auto",
	ProtocolPV:          "pv",
	ProtocolDeviceModel: "devicemodel",
}

var deviceTypeNames = map[DeviceType]string{
	DeviceTypeHostDev: "hostdev",
}

func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}

	return fmt.Sprintf("Protocol(%d)", int(p))
}

// ParseProtocol decodes a protocol name.
func ParseProtocol(s string) (Protocol, error) {
	for p, name := range protocolNames {
		if name == s {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown protocol %q", s)
}

func (t DeviceType) String() string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("DeviceType(%d)", int(t))
}

// ParseDeviceType decodes a device type name.
func ParseDeviceType(s string) (DeviceType, error) {
	for t, name := range deviceTypeNames {
		if name == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown device type %q", s)
}

// ToInternal builds the record for attaching desc to targetDomID.
// The protocol is copied as is; BackendDefault becomes 0.
func ToInternal(desc Descriptor, targetDomID, dmDomID uint32) *Record {
	backend := desc.BackendDomID
	if backend == BackendDefault {
		backend = 0
	}

	return &Record{
		Protocol:     desc.Protocol,
		BackendDomID: backend,
		TargetDomID:  targetDomID,
		DMDomID:      dmDomID,
		Device:       desc.Device,
	}
}

// ToExternal converts rec back to a Descriptor. A descriptor that asked for
// BackendDefault comes back with the concrete backend, 0.
func ToExternal(rec *Record) Descriptor {
	return Descriptor{
		Protocol:     rec.Protocol,
		BackendDomID: rec.BackendDomID,
		Device:       rec.Device,
	}
}

// usbPath is the directory holding every device record of domid.
func usbPath(domid uint32) string {
	return store.Join(domain.Path(domid), "usb")
}

// devicePath is the store subtree of one device record.
func devicePath(domid uint32, dev Device) string {
	return store.Join(usbPath(domid), dev.NodeName())
}

func encodeRecord(rec *Record) ([]store.KeyValue, error) {
	entries := []store.KeyValue{
		{Key: fieldProtocol, Value: rec.Protocol.String()},
		{Key: fieldBackendDomID, Value: strconv.FormatUint(uint64(rec.BackendDomID), 10)},
		{Key: fieldType, Value: rec.Device.Type().String()},
	}

	switch dev := rec.Device.(type) {
	case HostDev:
		entries = append(entries,
			store.KeyValue{Key: fieldHostBus, Value: strconv.Itoa(int(dev.Bus))},
			store.KeyValue{Key: fieldHostAddr, Value: strconv.Itoa(int(dev.Addr))},
		)
	default:
		return nil, fmt.Errorf("%w: cannot encode device type %s", ErrValidation, rec.Device.Type())
	}

	return entries, nil
}

// fieldReader reads one field of a device record.
type fieldReader func(field string) (string, error)

// deviceDecoders decode the type-specific fields of each device variant.
var deviceDecoders = map[DeviceType]func(read fieldReader) (Device, error){
	DeviceTypeHostDev: decodeHostDev,
}

func decodeHostDev(read fieldReader) (Device, error) {
	bus, err := readUint8(read, fieldHostBus)
	if err != nil {
		return nil, err
	}

	addr, err := readUint8(read, fieldHostAddr)
	if err != nil {
		return nil, err
	}

	return HostDev{Bus: bus, Addr: addr}, nil
}

func readUint8(read fieldReader, field string) (uint8, error) {
	value, err := read(field)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}

	return uint8(n), nil
}

func decodeRecord(domid uint32, read fieldReader) (*Record, error) {
	protocolName, err := read(fieldProtocol)
	if err != nil {
		return nil, err
	}

	protocol, err := ParseProtocol(protocolName)
	if err != nil {
		return nil, err
	}

	backendValue, err := read(fieldBackendDomID)
	if err != nil {
		return nil, err
	}

	backend, err := strconv.ParseUint(backendValue, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fieldBackendDomID, err)
	}

	typeName, err := read(fieldType)
	if err != nil {
		return nil, err
	}

	devType, err := ParseDeviceType(typeName)
	if err != nil {
		return nil, err
	}

	decode, ok := deviceDecoders[devType]
	if !ok {
		return nil, fmt.Errorf("no decoder for device type %s", devType)
	}

	dev, err := decode(read)
	if err != nil {
		return nil, err
	}

	return &Record{
		Protocol:     protocol,
		BackendDomID: uint32(backend),
		TargetDomID:  domid,
		Device:       dev,
	}, nil
}
