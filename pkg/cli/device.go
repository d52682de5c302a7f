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

package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/carverauto/vmusb/pkg/usb"
)

// deviceFlags are the flags naming one host device assignment.
type deviceFlags struct {
	domid    uint32
	bus      uint8
	addr     uint8
	protocol string
	backend  int64
}

func (f *deviceFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Uint32Var(&f.domid, "domid", 0, "target VM domain id")
	flags.Uint8Var(&f.bus, "hostbus", 0, "host USB bus number")
	flags.Uint8Var(&f.addr, "hostaddr", 0, "host USB device address")
	flags.StringVar(&f.protocol, "protocol", usb.ProtocolAuto.String(), "protocol: auto, pv or devicemodel")
	flags.Int64Var(&f.backend, "backend-domid", -1, "backend domain id, -1 for the default")

	for _, name := range []string{"domid", "hostbus", "hostaddr"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *deviceFlags) descriptor() (usb.Descriptor, error) {
	protocol, err := usb.ParseProtocol(f.protocol)
	if err != nil {
		return usb.Descriptor{}, fmt.Errorf("%w: %w", usb.ErrValidation, err)
	}

	backend := usb.BackendDefault

	switch {
	case f.backend == -1:
	case f.backend >= 0 && f.backend < math.MaxUint32:
		backend = uint32(f.backend)
	default:
		return usb.Descriptor{}, fmt.Errorf("%w: %w: %d", usb.ErrValidation, errBackendDomID, f.backend)
	}

	return usb.Descriptor{
		Protocol:     protocol,
		BackendDomID: backend,
		Device:       usb.HostDev{Bus: f.bus, Addr: f.addr},
	}, nil
}

func newAttachCommand(rt *runtime) *cobra.Command {
	f := &deviceFlags{}

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a host USB device to a running VM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.runDeviceOp(cmd, f, usb.ActionAdd)
		},
	}

	f.register(cmd)

	return cmd
}

func newDetachCommand(rt *runtime) *cobra.Command {
	f := &deviceFlags{}

	cmd := &cobra.Command{
		Use:   "detach",
		Short: "Detach a host USB device from a running VM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.runDeviceOp(cmd, f, usb.ActionRemove)
		},
	}

	f.register(cmd)

	return cmd
}

func (rt *runtime) runDeviceOp(cmd *cobra.Command, f *deviceFlags, action usb.Action) error {
	desc, err := f.descriptor()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	s, release, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	manager := rt.newManager(s)

	var op *usb.Operation
	if action == usb.ActionAdd {
		op = manager.Add(ctx, f.domid, desc, nil)
	} else {
		op = manager.Remove(ctx, f.domid, desc, nil)
	}

	// Not bounded by ctx: the store step finishes after a hot-plug.
	<-op.Done()

	if err := op.Err(); err != nil {
		return err
	}

	verb, prep := "attached", "to"
	if action == usb.ActionRemove {
		verb, prep = "detached", "from"
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s domain %d\n", verb, desc.Device, prep, f.domid)

	return err
}
