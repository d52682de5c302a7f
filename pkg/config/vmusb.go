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

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/carverauto/vmusb/pkg/models"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendNATS   = "nats"

	defaultNATSURL        = "nats://127.0.0.1:4222"
	defaultBucket         = "vmusb-store"
	defaultSocketTemplate = "/var/run/xen/qmp-libxl-%d"
	defaultDialTimeout    = 5 * time.Second
	defaultCommandTimeout = 30 * time.Second
)

var (
	errUnknownBackend      = errors.New("unknown store backend")
	errSocketTemplate      = errors.New("qmp socket_template must contain exactly one %d")
	errNegativeTimeout     = errors.New("qmp timeouts must not be negative")
	errUnknownSecurityMode = errors.New("unknown security mode")
	errCertFileRequired    = errors.New("cert_file is required for mtls")
	errKeyFileRequired     = errors.New("key_file is required for mtls")
	errCAFileRequired      = errors.New("ca_file is required for mtls")
	errOTelEndpoint        = errors.New("logging.otel.endpoint is required when export is enabled")
)

// Config is the usbctl configuration.
type Config struct {
	Store   StoreConfig   `json:"store"`
	QMP     QMPConfig     `json:"qmp"`
	Logging logger.Config `json:"logging"`
}

// StoreConfig selects and configures the hierarchical store engine.
type StoreConfig struct {
	Backend  string                `json:"backend"`
	NATSURL  string                `json:"nats_url"`
	Bucket   string                `json:"bucket"`
	Domain   string                `json:"domain,omitempty"`
	Security models.SecurityConfig `json:"security"`
}

// QMPConfig configures the device-model control channel.
type QMPConfig struct {
	SocketTemplate string          `json:"socket_template"`
	DialTimeout    models.Duration `json:"dial_timeout"`
	CommandTimeout models.Duration `json:"command_timeout"`
}

// Validate applies defaults and checks the configuration.
func (c *Config) Validate() error {
	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if err := c.QMP.validate(); err != nil {
		return fmt.Errorf("qmp: %w", err)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}

	if c.Logging.OTel.Enabled && c.Logging.OTel.Endpoint == "" {
		return errOTelEndpoint
	}

	return nil
}

func (s *StoreConfig) validate() error {
	if s.Backend == "" {
		s.Backend = StoreBackendNATS
	}

	switch s.Backend {
	case StoreBackendMemory:
		return nil
	case StoreBackendNATS:
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, s.Backend)
	}

	if s.NATSURL == "" {
		s.NATSURL = defaultNATSURL
	}

	if s.Bucket == "" {
		s.Bucket = defaultBucket
	}

	return s.validateSecurity()
}

func (s *StoreConfig) validateSecurity() error {
	switch s.Security.Mode {
	case "", models.SecurityModeNone:
		s.Security.Mode = models.SecurityModeNone

		return nil
	case models.SecurityModeMTLS:
	default:
		return fmt.Errorf("%w: %q", errUnknownSecurityMode, s.Security.Mode)
	}

	tls := s.Security.TLS

	if tls.CertFile == "" {
		return errCertFileRequired
	}

	if tls.KeyFile == "" {
		return errKeyFileRequired
	}

	if tls.CAFile == "" {
		return errCAFileRequired
	}

	if s.Security.CertDir != "" {
		s.Security.TLS.NormalizeTLSPaths(s.Security.CertDir)
	}

	return nil
}

func (q *QMPConfig) validate() error {
	if q.SocketTemplate == "" {
		q.SocketTemplate = defaultSocketTemplate
	}

	if strings.Count(q.SocketTemplate, "%d") != 1 || strings.Count(q.SocketTemplate, "%") != 1 {
		return errSocketTemplate
	}

	if q.DialTimeout < 0 || q.CommandTimeout < 0 {
		return errNegativeTimeout
	}

	if q.DialTimeout == 0 {
		q.DialTimeout = models.Duration(defaultDialTimeout)
	}

	if q.CommandTimeout == 0 {
		q.CommandTimeout = models.Duration(defaultCommandTimeout)
	}

	return nil
}
