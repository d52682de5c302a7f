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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		partition string
		rel       string
		wantErr   bool
	}{
		{name: "partition root", path: "/libxl/5", partition: "/libxl/5", rel: ""},
		{name: "trailing slash", path: "/libxl/5/", partition: "/libxl/5", rel: ""},
		{name: "nested", path: "/libxl/5/usb/hostdev-0001-0002", partition: "/libxl/5", rel: "usb/hostdev-0001-0002"},
		{name: "relative", path: "libxl/5", wantErr: true},
		{name: "too shallow", path: "/libxl", wantErr: true},
		{name: "dot segments", path: "/libxl/5/../6", wantErr: true},
		{name: "double slash", path: "/libxl//5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partition, rel, err := splitPath(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPath)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.partition, partition)
			assert.Equal(t, tt.rel, rel)
		})
	}
}

func TestDocumentRoundTripKeepsTree(t *testing.T) {
	doc := newDocument()
	doc.write("usb/hostdev-0001-0002/type", "hostdev")

	data, err := doc.encode()
	require.NoError(t, err)

	decoded, err := decodeDocument(data)
	require.NoError(t, err)

	assert.True(t, decoded.exists(""))
	assert.True(t, decoded.exists("usb"))
	assert.True(t, decoded.exists("usb/hostdev-0001-0002"))

	names, ok := decoded.children("usb")
	require.True(t, ok)
	assert.Equal(t, []string{"hostdev-0001-0002"}, names)
}

func TestDocumentRemoveDoesNotTouchSiblingPrefix(t *testing.T) {
	doc := newDocument()
	doc.write("usb/dev/type", "hostdev")
	doc.write("usb/dev2/type", "hostdev")

	require.True(t, doc.remove("usb/dev"))

	assert.False(t, doc.exists("usb/dev/type"))
	assert.True(t, doc.exists("usb/dev2/type"))
}

func TestDecodeEmptyDocument(t *testing.T) {
	doc, err := decodeDocument(nil)
	require.NoError(t, err)
	assert.False(t, doc.exists(""))

	_, err = decodeDocument([]byte("{"))
	require.Error(t, err)
}
