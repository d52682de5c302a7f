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

package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "stdout",
	}

	err := Init(config)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := WithComponent("test-component")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.GetLevel())
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(&Config{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewDoesNotTouchGlobal(t *testing.T) {
	require.NoError(t, Init(&Config{Level: "warn"}))

	l, err := New(&Config{Level: "debug"})
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
	assert.Equal(t, zerolog.WarnLevel, WithComponent("x").GetLevel())
}

func TestWrapWritesComponentField(t *testing.T) {
	var buf bytes.Buffer

	l := Wrap(zerolog.New(&buf))
	component := l.WithComponent("usb")
	component.Info().Msg("hello")

	if !bytes.Contains(buf.Bytes(), []byte(`"component":"usb"`)) {
		t.Errorf("expected component field in %s", buf.String())
	}
}

func TestTestLoggerDiscards(t *testing.T) {
	l := NewTestLogger()

	if l.Info().Enabled() {
		t.Error("test logger should be disabled")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level == "" {
		t.Error("Default config should have a level set")
	}

	if config.Output == "" {
		t.Error("Default config should have an output set")
	}
}

func TestDefaultOTelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "authorization=Bearer x, tenant = a")

	cfg := DefaultOTelConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "collector:4317", cfg.Endpoint)
	assert.Equal(t, map[string]string{"authorization": "Bearer x", "tenant": "a"}, cfg.Headers)
	assert.False(t, cfg.Insecure)
}

func TestInitializeTracingWithoutExporter(t *testing.T) {
	tp, ctx, span, err := InitializeTracing(context.Background(), TracingConfig{
		ServiceName: "usbctl-test",
		Logger:      NewTestLogger(),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	assert.True(t, span.SpanContext().IsValid())

	_, child := GetTracer("test").Start(ctx, "child")
	assert.Equal(t, span.SpanContext().TraceID(), child.SpanContext().TraceID())

	child.End()
	span.End()
}
