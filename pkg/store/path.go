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

package store

import (
	"fmt"
	"path"
	"strings"
)

const partitionDepth = 2

// Join joins path elements with slashes.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// splitPath returns the partition and the partition-relative remainder of p.
// The remainder is empty when p names the partition root.
func splitPath(p string) (partition, rel string, err error) {
	if !strings.HasPrefix(p, "/") {
		return "", "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, p)
	}

	clean := path.Clean(p)
	if clean != p && clean+"/" != p {
		return "", "", fmt.Errorf("%w: %q is not canonical", ErrInvalidPath, p)
	}

	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if len(parts) < partitionDepth || parts[0] == "" {
		return "", "", fmt.Errorf("%w: %q has no partition", ErrInvalidPath, p)
	}

	partition = "/" + strings.Join(parts[:partitionDepth], "/")
	rel = strings.Join(parts[partitionDepth:], "/")

	return partition, rel, nil
}
