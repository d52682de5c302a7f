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

package lifecycle

import (
	"testing"

	"github.com/carverauto/vmusb/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger("usb", &logger.Config{Level: "warn", Output: "stderr"})
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.False(t, log.Info().Enabled())
	assert.True(t, log.Warn().Enabled())

	// The global logger follows the same config.
	assert.Equal(t, zerolog.WarnLevel, logger.WithComponent("other").GetLevel())
}

func TestCreateComponentLoggerBadLevel(t *testing.T) {
	_, err := CreateComponentLogger("usb", &logger.Config{Level: "loud"})
	require.Error(t, err)
}

func TestInitializeLoggerDefaults(t *testing.T) {
	require.NoError(t, InitializeLogger(nil))
}
