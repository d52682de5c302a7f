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

	"github.com/spf13/cobra"

	"github.com/carverauto/vmusb/pkg/domain"
	"github.com/carverauto/vmusb/pkg/usb"
)

func newDomainCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage the domain information USB operations depend on",
	}

	cmd.AddCommand(newDomainSetCommand(rt))
	cmd.AddCommand(newDomainShowCommand(rt))

	return cmd
}

func newDomainSetCommand(rt *runtime) *cobra.Command {
	var (
		domid     uint32
		kind      string
		dmVersion string
		dmDomID   uint32
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Record the type and device model of a domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := domain.Info{HelperDomID: dmDomID}

			var err error

			if info.Kind, err = domain.ParseKind(kind); err != nil {
				return fmt.Errorf("%w: %w", usb.ErrValidation, err)
			}

			if info.DeviceModelVersion, err = domain.ParseDeviceModelVersion(dmVersion); err != nil {
				return fmt.Errorf("%w: %w", usb.ErrValidation, err)
			}

			ctx := cmd.Context()

			s, release, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			if err := domain.NewProvider(s).Register(ctx, domid, info); err != nil {
				return fmt.Errorf("%w: %w", usb.ErrStore, err)
			}

			rt.log.Info().
				Uint32("domid", domid).
				Str("type", info.Kind.String()).
				Str("dm_version", info.DeviceModelVersion.String()).
				Uint32("dm_domid", dmDomID).
				Msg("Domain registered")

			return nil
		},
	}

	cmd.Flags().Uint32Var(&domid, "domid", 0, "domain id")
	cmd.Flags().StringVar(&kind, "type", "", "domain type: pv, hvm or pvh")
	cmd.Flags().StringVar(&dmVersion, "dm-version", domain.DeviceModelQemuXen.String(),
		"device model: none, qemu_xen or qemu_xen_traditional")
	cmd.Flags().Uint32Var(&dmDomID, "dm-domid", 0, "helper domain running the device model, 0 for none")
	_ = cmd.MarkFlagRequired("domid")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newDomainShowCommand(rt *runtime) *cobra.Command {
	var domid uint32

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the recorded information of a domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, release, err := rt.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			provider := domain.NewProvider(s)

			kind, err := provider.Kind(ctx, domid)
			if err != nil {
				return err
			}

			version, err := provider.DeviceModelVersion(ctx, domid)
			if err != nil {
				return err
			}

			helper, err := provider.HelperDomID(ctx, domid)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "domid: %d\ntype: %s\ndm-version: %s\ndm-domid: %d\n",
				domid, kind, version, helper)

			return err
		},
	}

	cmd.Flags().Uint32Var(&domid, "domid", 0, "domain id")
	_ = cmd.MarkFlagRequired("domid")

	return cmd
}
