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

// sameAssignment reports whether a and b name the same physical device on
// the same backend. The protocol is not part of the identity.
func sameAssignment(a, b *Record) bool {
	if a.BackendDomID != b.BackendDomID {
		return false
	}

	if a.Device == nil || b.Device == nil || a.Device.Type() != b.Device.Type() {
		return false
	}

	switch da := a.Device.(type) {
	case HostDev:
		db, ok := b.Device.(HostDev)

		return ok && da.Bus == db.Bus && da.Addr == db.Addr
	default:
		return false
	}
}

// IsMember reports whether candidate is already part of set.
func IsMember(set []*Record, candidate *Record) bool {
	for _, rec := range set {
		if sameAssignment(rec, candidate) {
			return true
		}
	}

	return false
}
