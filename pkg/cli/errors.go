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
	"errors"

	"github.com/carverauto/vmusb/pkg/usb"
)

var (
	errUnknownBackend = errors.New("unknown store backend")
	errBackendDomID   = errors.New("backend-domid must be -1 or a valid domain id")
)

// Exit codes returned by ExitCode.
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitConflict   = 3
	ExitBackend    = 4
	ExitStore      = 5
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, usb.ErrValidation):
		return ExitValidation
	case errors.Is(err, usb.ErrConflict):
		return ExitConflict
	case errors.Is(err, usb.ErrBackend):
		return ExitBackend
	case errors.Is(err, usb.ErrStore):
		return ExitStore
	default:
		return ExitFailure
	}
}

// ErrorKind names the failure class of err for display.
func ErrorKind(err error) string {
	switch ExitCode(err) {
	case ExitValidation:
		return "validation"
	case ExitConflict:
		return "conflict"
	case ExitBackend:
		return "backend"
	case ExitStore:
		return "store"
	default:
		return "error"
	}
}
