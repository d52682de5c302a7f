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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMember(t *testing.T) {
	set := []*Record{
		{Protocol: ProtocolDeviceModel, BackendDomID: 0, Device: HostDev{Bus: 1, Addr: 2}},
		{Protocol: ProtocolDeviceModel, BackendDomID: 4, Device: HostDev{Bus: 3, Addr: 3}},
	}

	tests := []struct {
		name      string
		candidate *Record
		want      bool
	}{
		{name: "same device", candidate: &Record{Protocol: ProtocolDeviceModel, Device: HostDev{Bus: 1, Addr: 2}}, want: true},
		{name: "protocol ignored", candidate: &Record{Protocol: ProtocolPV, Device: HostDev{Bus: 1, Addr: 2}}, want: true},
		{name: "other backend", candidate: &Record{BackendDomID: 4, Device: HostDev{Bus: 1, Addr: 2}}},
		{name: "other address", candidate: &Record{Device: HostDev{Bus: 1, Addr: 3}}},
		{name: "other bus", candidate: &Record{Device: HostDev{Bus: 2, Addr: 2}}},
		{name: "matching backend", candidate: &Record{BackendDomID: 4, Device: HostDev{Bus: 3, Addr: 3}}, want: true},
		{name: "no device", candidate: &Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMember(set, tt.candidate))
		})
	}

	assert.False(t, IsMember(nil, set[0]))
}
