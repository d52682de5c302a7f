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

package usb

import "errors"

// Every workflow failure wraps exactly one of the first four sentinels.
// ErrNotImplemented always travels together with ErrBackend.
var (
	ErrValidation     = errors.New("invalid usb request")
	ErrConflict       = errors.New("usb assignment conflict")
	ErrBackend        = errors.New("usb backend failure")
	ErrStore          = errors.New("usb store failure")
	ErrNotImplemented = errors.New("not implemented")
)
