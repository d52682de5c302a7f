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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/carverauto/vmusb/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, StoreBackendNATS, cfg.Store.Backend)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Store.NATSURL)
	assert.Equal(t, "vmusb-store", cfg.Store.Bucket)
	assert.Equal(t, models.SecurityModeNone, cfg.Store.Security.Mode)
	assert.Equal(t, "/var/run/xen/qmp-libxl-%d", cfg.QMP.SocketTemplate)
	assert.Equal(t, 5*time.Second, cfg.QMP.DialTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.QMP.CommandTimeout.Std())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := filepath.Join(t.TempDir(), "usbctl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"store": {"backend": "memory"},
		"qmp": {"socket_template": "/tmp/qmp-%d.sock", "command_timeout": "2s"},
		"logging": {"level": "debug"}
	}`), 0o600))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StoreBackendMemory, cfg.Store.Backend)
	assert.Empty(t, cfg.Store.NATSURL)
	assert.Equal(t, "/tmp/qmp-%d.sock", cfg.QMP.SocketTemplate)
	assert.Equal(t, 2*time.Second, cfg.QMP.CommandTimeout.Std())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestFileLoaderIsStrict(t *testing.T) {
	dir := t.TempDir()

	typo := filepath.Join(dir, "typo.json")
	require.NoError(t, os.WriteFile(typo, []byte(`{"store": {"bakend": "memory"}}`), 0o600))

	err := (&FileConfigLoader{}).Load(context.Background(), typo, &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "*config.Config")
	assert.Contains(t, err.Error(), "bakend")

	trailing := filepath.Join(dir, "trailing.json")
	require.NoError(t, os.WriteFile(trailing, []byte(`{"store": {}} {}`), 0o600))

	err = (&FileConfigLoader{}).Load(context.Background(), trailing, &Config{})
	require.ErrorIs(t, err, errTrailingData)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("VMUSB_STORE_NATS_URL", "nats://store:4222")
	t.Setenv("VMUSB_STORE_BUCKET", "usb")
	t.Setenv("VMUSB_QMP_DIAL_TIMEOUT", "750ms")
	t.Setenv("VMUSB_LOGGING_DEBUG", "true")

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "nats://store:4222", cfg.Store.NATSURL)
	assert.Equal(t, "usb", cfg.Store.Bucket)
	assert.Equal(t, 750*time.Millisecond, cfg.QMP.DialTimeout.Std())
	assert.True(t, cfg.Logging.Debug)
}

func TestLoadFromEnvJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("VMUSB_CONFIG_JSON", `{"store": {"backend": "memory"}}`)

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StoreBackendMemory, cfg.Store.Backend)
}

func TestLoadFromEnvBadValue(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("VMUSB_QMP_COMMAND_TIMEOUT", "eventually")

	_, err := Load(context.Background(), "")
	require.Error(t, err)
}

func TestLoadInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	_, err := Load(context.Background(), "")
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvLoaderRejectsNonPointer(t *testing.T) {
	loader := NewEnvConfigLoader(logger.NewTestLogger(), "TEST_")

	require.ErrorIs(t, loader.Load(context.Background(), "", Config{}), ErrDstMustBeNonNilPointer)

	s := "x"
	require.ErrorIs(t, loader.Load(context.Background(), "", &s), ErrDstMustBePointerToStruct)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "unknown backend",
			cfg:     Config{Store: StoreConfig{Backend: "etcd"}},
			wantErr: errUnknownBackend,
		},
		{
			name:    "unknown security mode",
			cfg:     Config{Store: StoreConfig{Security: models.SecurityConfig{Mode: "spiffe"}}},
			wantErr: errUnknownSecurityMode,
		},
		{
			name:    "mtls without cert",
			cfg:     Config{Store: StoreConfig{Security: models.SecurityConfig{Mode: models.SecurityModeMTLS}}},
			wantErr: errCertFileRequired,
		},
		{
			name: "mtls without key",
			cfg: Config{Store: StoreConfig{Security: models.SecurityConfig{
				Mode: models.SecurityModeMTLS,
				TLS:  models.TLSConfig{CertFile: "c.pem"},
			}}},
			wantErr: errKeyFileRequired,
		},
		{
			name: "mtls without ca",
			cfg: Config{Store: StoreConfig{Security: models.SecurityConfig{
				Mode: models.SecurityModeMTLS,
				TLS:  models.TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"},
			}}},
			wantErr: errCAFileRequired,
		},
		{
			name:    "template without domid",
			cfg:     Config{QMP: QMPConfig{SocketTemplate: "/run/qmp.sock"}},
			wantErr: errSocketTemplate,
		},
		{
			name:    "template with extra verb",
			cfg:     Config{QMP: QMPConfig{SocketTemplate: "/run/%s/qmp-%d"}},
			wantErr: errSocketTemplate,
		},
		{
			name:    "negative timeout",
			cfg:     Config{QMP: QMPConfig{CommandTimeout: models.Duration(-time.Second)}},
			wantErr: errNegativeTimeout,
		},
		{
			name:    "trace export without endpoint",
			cfg:     Config{Logging: logger.Config{OTel: logger.OTelConfig{Enabled: true}}},
			wantErr: errOTelEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesCertPaths(t *testing.T) {
	cfg := Config{Store: StoreConfig{Security: models.SecurityConfig{
		Mode:    models.SecurityModeMTLS,
		CertDir: "/etc/vmusb/certs",
		TLS:     models.TLSConfig{CertFile: "c.pem", KeyFile: "k.pem", CAFile: "ca.pem"},
	}}}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/etc/vmusb/certs/c.pem", cfg.Store.Security.TLS.CertFile)
	assert.Equal(t, "/etc/vmusb/certs/ca.pem", cfg.Store.Security.TLS.ClientCAFile)
}
