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

// Package cli implements the usbctl command tree.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carverauto/vmusb/pkg/config"
	"github.com/carverauto/vmusb/pkg/domain"
	"github.com/carverauto/vmusb/pkg/lifecycle"
	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/carverauto/vmusb/pkg/models"
	"github.com/carverauto/vmusb/pkg/natsutil"
	"github.com/carverauto/vmusb/pkg/qmp"
	"github.com/carverauto/vmusb/pkg/store"
	"github.com/carverauto/vmusb/pkg/usb"
	"github.com/carverauto/vmusb/pkg/version"
)

const (
	componentName = "usbctl"

	tracerShutdownTimeout = 5 * time.Second
)

// Option overrides a dependency the commands would otherwise build from
// the configuration.
type Option func(*runtime)

// WithStore makes the commands use s. The caller keeps ownership.
func WithStore(s store.Store) Option {
	return func(rt *runtime) { rt.store = s }
}

// WithDeviceModel replaces the QMP client.
func WithDeviceModel(dm usb.DeviceModel) Option {
	return func(rt *runtime) { rt.deviceModel = dm }
}

// WithLogger replaces the configured logger.
func WithLogger(l logger.Logger) Option {
	return func(rt *runtime) { rt.log = l }
}

// runtime is the state shared by one invocation of the command tree.
type runtime struct {
	configPath  string
	cfg         *config.Config
	log         logger.Logger
	store       store.Store
	deviceModel usb.DeviceModel
	shutdown    func()
}

// NewRootCommand builds the usbctl command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	root, _ := newRootCommand(opts...)

	return root
}

func newRootCommand(opts ...Option) (*cobra.Command, *runtime) {
	rt := &runtime{}
	for _, opt := range opts {
		opt(rt)
	}

	root := &cobra.Command{
		Use:   componentName,
		Short: "Pass host USB devices through to running VMs",
		Long: `usbctl attaches and detaches host USB devices of running VMs and lists
the devices assigned to a VM.

Assignments are kept in the hierarchical store under /libxl/<domid>/usb.
Devices are hot-plugged into qemu-xen over its QMP socket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}

			return rt.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "path to a JSON config file")

	root.AddCommand(newAttachCommand(rt))
	root.AddCommand(newDetachCommand(rt))
	root.AddCommand(newListCommand(rt))
	root.AddCommand(newDomainCommand(rt))
	root.AddCommand(newVersionCommand())

	return root, rt
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	root, rt := newRootCommand()
	defer rt.close()

	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, rt.configPath)
	if err != nil {
		return err
	}

	rt.cfg = cfg

	if rt.log == nil {
		rt.log, err = lifecycle.CreateComponentLogger(componentName, &cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	tp, ctx, rootSpan, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    componentName,
		ServiceVersion: version.GetVersion(),
		Logger:         rt.log,
		OTel:           &cfg.Logging.OTel,
	})
	if err != nil {
		return err
	}

	rootSpan.SetAttributes(attribute.String("command", cmd.CommandPath()))
	cmd.SetContext(ctx)

	rt.shutdown = func() {
		rootSpan.End()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			rt.log.Warn().Err(err).Msg("Failed to flush traces")
		}
	}

	return nil
}

// close ends the invocation's root span and flushes exported traces.
func (rt *runtime) close() {
	if rt.shutdown != nil {
		rt.shutdown()
	}
}

// openStore returns the store and a function releasing it.
func (rt *runtime) openStore(ctx context.Context) (store.Store, func(), error) {
	if rt.store != nil {
		return rt.store, func() {}, nil
	}

	s, err := newStore(ctx, &rt.cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	return s, func() {
		if err := s.Close(); err != nil {
			rt.log.Warn().Err(err).Msg("Failed to close store")
		}
	}, nil
}

func newStore(ctx context.Context, cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreBackendMemory:
		return store.NewMemoryStore(), nil
	case config.StoreBackendNATS:
		opts := store.NATSOptions{
			URL:    cfg.NATSURL,
			Bucket: cfg.Bucket,
			Domain: cfg.Domain,
		}

		if cfg.Security.Mode == models.SecurityModeMTLS {
			tlsConfig, err := natsutil.TLSConfig(&cfg.Security)
			if err != nil {
				return nil, err
			}

			opts.TLSConfig = tlsConfig
		}

		return store.NewNATSStore(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, cfg.Backend)
	}
}

func (rt *runtime) newDeviceModel() usb.DeviceModel {
	if rt.deviceModel != nil {
		return rt.deviceModel
	}

	return qmp.NewClient(qmp.Options{
		SocketTemplate: rt.cfg.QMP.SocketTemplate,
		DialTimeout:    rt.cfg.QMP.DialTimeout.Std(),
		CommandTimeout: rt.cfg.QMP.CommandTimeout.Std(),
		Logger:         rt.log,
	})
}

func (rt *runtime) newManager(s store.Store) *usb.Manager {
	return usb.NewManager(s, domain.NewProvider(s), rt.newDeviceModel(), rt.log)
}
