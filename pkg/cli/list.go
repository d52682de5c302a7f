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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carverauto/vmusb/pkg/usb"
)

// deviceEntry is the list output of one assignment.
type deviceEntry struct {
	Protocol     string `json:"protocol"`
	BackendDomID uint32 `json:"backend_domid"`
	Type         string `json:"type"`
	HostBus      uint8  `json:"hostbus,omitempty"`
	HostAddr     uint8  `json:"hostaddr,omitempty"`
}

func newDeviceEntry(desc usb.Descriptor) deviceEntry {
	entry := deviceEntry{
		Protocol:     desc.Protocol.String(),
		BackendDomID: desc.BackendDomID,
		Type:         desc.Device.Type().String(),
	}

	if hostdev, ok := desc.Device.(usb.HostDev); ok {
		entry.HostBus = hostdev.Bus
		entry.HostAddr = hostdev.Addr
	}

	return entry
}

func newListCommand(rt *runtime) *cobra.Command {
	var (
		domid  uint32
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the USB devices assigned to a VM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, release, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			descs, err := rt.newManager(s).List(ctx, domid)
			if err != nil {
				return err
			}

			entries := make([]deviceEntry, 0, len(descs))
			for _, desc := range descs {
				entries = append(entries, newDeviceEntry(desc))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(entries)
			}

			return writeTable(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().Uint32Var(&domid, "domid", 0, "VM domain id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("domid")

	return cmd
}

func writeTable(out io.Writer, entries []deviceEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "TYPE\tHOSTBUS\tHOSTADDR\tPROTOCOL\tBACKEND")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\n", e.Type, e.HostBus, e.HostAddr, e.Protocol, e.BackendDomID)
	}

	return w.Flush()
}
