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

package models

import "path/filepath"

// TLSConfig holds TLS certificate locations.
type TLSConfig struct {
	CertFile     string `json:"cert_file"`
	KeyFile      string `json:"key_file"`
	CAFile       string `json:"ca_file"`
	ClientCAFile string `json:"client_ca_file"`
}

// SecurityMode defines the type of security to use.
type SecurityMode string

const (
	SecurityModeNone SecurityMode = "none"
	SecurityModeMTLS SecurityMode = "mtls"
)

// SecurityConfig holds the store connection security settings.
type SecurityConfig struct {
	Mode       SecurityMode `json:"mode"`
	CertDir    string       `json:"cert_dir"`
	ServerName string       `json:"server_name,omitempty"`
	TLS        TLSConfig    `json:"tls"`
}

// NormalizeTLSPaths resolves relative certificate paths against certDir.
// An unset ClientCAFile falls back to CAFile.
func (t *TLSConfig) NormalizeTLSPaths(certDir string) {
	if !filepath.IsAbs(t.CertFile) {
		t.CertFile = filepath.Join(certDir, t.CertFile)
	}

	if !filepath.IsAbs(t.KeyFile) {
		t.KeyFile = filepath.Join(certDir, t.KeyFile)
	}

	if !filepath.IsAbs(t.CAFile) {
		t.CAFile = filepath.Join(certDir, t.CAFile)
	}

	if t.ClientCAFile != "" && !filepath.IsAbs(t.ClientCAFile) {
		t.ClientCAFile = filepath.Join(certDir, t.ClientCAFile)
	} else if t.ClientCAFile == "" {
		t.ClientCAFile = t.CAFile
	}
}
