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

// Package qmp drives a running qemu-xen device model over its QMP socket.
package qmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/digitalocean/go-qemu/qmp"
)

var (
	ErrConnect = errors.New("qmp connect failed")
	ErrCommand = errors.New("qmp command failed")
	ErrTimeout = errors.New("qmp command did not complete")
)

const (
	DefaultSocketTemplate = "/var/run/xen/qmp-libxl-%d"

	usbHostDriver = "usb-host"
)

// Monitor is the subset of a QMP monitor the client needs.
type Monitor interface {
	Connect() error
	Disconnect() error
	Run(command []byte) ([]byte, error)
}

// Dialer opens a monitor on a socket address.
type Dialer func(network, addr string, timeout time.Duration) (Monitor, error)

func dialSocket(network, addr string, timeout time.Duration) (Monitor, error) {
	return qmp.NewSocketMonitor(network, addr, timeout)
}

// Options configures a Client.
type Options struct {
	// SocketTemplate is formatted with the domid to locate the QMP socket.
	SocketTemplate string
	DialTimeout    time.Duration
	// CommandTimeout bounds one command including connect. Zero disables it.
	CommandTimeout time.Duration
	Logger         logger.Logger
	// Dialer overrides the unix socket dialer.
	Dialer Dialer
}

// Client issues device hot-plug commands to qemu-xen. Each command uses its
// own connection.
type Client struct {
	template       string
	dialTimeout    time.Duration
	commandTimeout time.Duration
	dial           Dialer
	logger         logger.Logger
}

// NewClient returns a Client for opts.
func NewClient(opts Options) *Client {
	c := &Client{
		template:       opts.SocketTemplate,
		dialTimeout:    opts.DialTimeout,
		commandTimeout: opts.CommandTimeout,
		dial:           opts.Dialer,
		logger:         opts.Logger,
	}

	if c.template == "" {
		c.template = DefaultSocketTemplate
	}

	if c.dial == nil {
		c.dial = dialSocket
	}

	if c.logger == nil {
		c.logger = logger.NewTestLogger()
	}

	return c
}

// SocketPath returns the QMP socket of domid.
func (c *Client) SocketPath(domid uint32) string {
	return fmt.Sprintf(c.template, domid)
}

// AddHostDevice passes the host USB device at bus/addr through to domid
// under the given device id.
func (c *Client) AddHostDevice(ctx context.Context, domid uint32, id string, bus, addr uint8) error {
	return c.execute(ctx, domid, qmp.Command{
		Execute: "device_add",
		Args: map[string]string{
			"driver":   usbHostDriver,
			"id":       id,
			"hostbus":  strconv.Itoa(int(bus)),
			"hostaddr": strconv.Itoa(int(addr)),
		},
	})
}

// RemoveDevice unplugs the device with the given id from domid.
func (c *Client) RemoveDevice(ctx context.Context, domid uint32, id string) error {
	return c.execute(ctx, domid, qmp.Command{
		Execute: "device_del",
		Args:    map[string]string{"id": id},
	})
}

type runResult struct {
	raw []byte
	err error
}

func (c *Client) execute(ctx context.Context, domid uint32, cmd qmp.Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrCommand, cmd.Execute, err)
	}

	if c.commandTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.commandTimeout)
		defer cancel()
	}

	socket := c.SocketPath(domid)

	mon, err := c.dial("unix", socket, c.dialTimeout)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnect, socket, err)
	}

	done := make(chan runResult, 1)

	go func() {
		if err := mon.Connect(); err != nil {
			done <- runResult{err: fmt.Errorf("%w: %s: %w", ErrConnect, socket, err)}

			return
		}

		raw, err := mon.Run(payload)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrCommand, cmd.Execute, err)
		}

		done <- runResult{raw: raw, err: err}
	}()

	select {
	case res := <-done:
		_ = mon.Disconnect()

		if res.err != nil {
			return res.err
		}

		event := c.logger.Debug().
			Uint32("domid", domid).
			Str("command", cmd.Execute)

		if json.Valid(res.raw) {
			event = event.RawJSON("response", res.raw)
		}

		event.Msg("QMP command completed")

		return nil
	case <-ctx.Done():
		// Closing the monitor unblocks the pending Run.
		_ = mon.Disconnect()

		c.logger.Warn().
			Uint32("domid", domid).
			Str("command", cmd.Execute).
			Err(ctx.Err()).
			Msg("QMP command abandoned")

		return fmt.Errorf("%w: %s: %w", ErrTimeout, cmd.Execute, ctx.Err())
	}
}
