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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/vmusb/pkg/store"
)

func writeFields(t *testing.T, s store.Store, base string, fields map[string]string) {
	t.Helper()

	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, tx.Write(ctx, store.Join(base, k), v))
	}

	require.NoError(t, tx.Commit(ctx))
}

func TestListAssignedEmpty(t *testing.T) {
	records, err := ListAssigned(context.Background(), store.NewMemoryStore(), 3)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListAssignedRecords(t *testing.T) {
	s := store.NewMemoryStore()
	seedRecord(t, s, 3, &Record{Protocol: ProtocolDeviceModel, TargetDomID: 3, Device: HostDev{Bus: 1, Addr: 2}})
	seedRecord(t, s, 3, &Record{Protocol: ProtocolPV, BackendDomID: 6, TargetDomID: 3, Device: HostDev{Bus: 1, Addr: 5}})
	seedRecord(t, s, 4, &Record{Protocol: ProtocolDeviceModel, TargetDomID: 4, Device: HostDev{Bus: 9, Addr: 9}})

	records, err := ListAssigned(context.Background(), s, 3)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, &Record{Protocol: ProtocolDeviceModel, TargetDomID: 3, Device: HostDev{Bus: 1, Addr: 2}}, records[0])
	assert.Equal(t, &Record{Protocol: ProtocolPV, BackendDomID: 6, TargetDomID: 3, Device: HostDev{Bus: 1, Addr: 5}}, records[1])
}

func TestListAssignedMalformed(t *testing.T) {
	valid := map[string]string{
		"protocol":      "devicemodel",
		"backend_domid": "0",
		"type":          "hostdev",
		"hostbus":       "1",
		"hostaddr":      "2",
	}

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{name: "missing protocol", mutate: func(f map[string]string) { delete(f, "protocol") }},
		{name: "missing hostaddr", mutate: func(f map[string]string) { delete(f, "hostaddr") }},
		{name: "unknown protocol", mutate: func(f map[string]string) { f["protocol"] = "usbif" }},
		{name: "unknown type", mutate: func(f map[string]string) { f["type"] = "hub" }},
		{name: "bad backend", mutate: func(f map[string]string) { f["backend_domid"] = "dom0" }},
		{name: "bus out of range", mutate: func(f map[string]string) { f["hostbus"] = "256" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()

			// A well-formed sibling must not be returned on its own.
			seedRecord(t, s, 3, &Record{Protocol: ProtocolDeviceModel, TargetDomID: 3, Device: HostDev{Bus: 7, Addr: 7}})

			fields := make(map[string]string, len(valid))
			for k, v := range valid {
				fields[k] = v
			}

			tt.mutate(fields)
			writeFields(t, s, "/libxl/3/usb/hostdev-0001-0002", fields)

			records, err := ListAssigned(context.Background(), s, 3)
			require.ErrorIs(t, err, ErrStore)
			assert.Nil(t, records)
		})
	}
}

func TestListAssignedClosedStore(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Close())

	_, err := ListAssigned(context.Background(), s, 3)
	require.ErrorIs(t, err, ErrStore)
	require.ErrorIs(t, err, store.ErrClosed)
}
