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
	"encoding/json"
	"sort"
	"strings"
)

// document holds the nodes of one partition keyed by partition-relative path.
// The empty key is the partition root. Every node's ancestors are present.
type document struct {
	Nodes map[string]string `json:"nodes"`
}

func newDocument() *document {
	return &document{Nodes: make(map[string]string)}
}

func decodeDocument(data []byte) (*document, error) {
	doc := newDocument()
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}

	if doc.Nodes == nil {
		doc.Nodes = make(map[string]string)
	}

	return doc, nil
}

func (d *document) encode() ([]byte, error) {
	return json.Marshal(d)
}

func (d *document) clone() *document {
	c := &document{Nodes: make(map[string]string, len(d.Nodes))}
	for k, v := range d.Nodes {
		c.Nodes[k] = v
	}

	return c
}

func (d *document) exists(rel string) bool {
	_, ok := d.Nodes[rel]

	return ok
}

func (d *document) read(rel string) (string, bool) {
	v, ok := d.Nodes[rel]

	return v, ok
}

func (d *document) children(rel string) ([]string, bool) {
	if !d.exists(rel) {
		return nil, false
	}

	prefix := ""
	if rel != "" {
		prefix = rel + "/"
	}

	names := make([]string, 0)

	for key := range d.Nodes {
		if key == "" || !strings.HasPrefix(key, prefix) {
			continue
		}

		rest := key[len(prefix):]
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}

		names = append(names, rest)
	}

	sort.Strings(names)

	return names, true
}

func (d *document) write(rel, value string) {
	d.ensureParents(rel)
	d.Nodes[rel] = value
}

func (d *document) ensureParents(rel string) {
	if rel == "" {
		return
	}

	if _, ok := d.Nodes[""]; !ok {
		d.Nodes[""] = ""
	}

	for i := strings.Index(rel, "/"); i >= 0; {
		parent := rel[:i]
		if _, ok := d.Nodes[parent]; !ok {
			d.Nodes[parent] = ""
		}

		next := strings.Index(rel[i+1:], "/")
		if next < 0 {
			break
		}

		i += next + 1
	}
}

// remove deletes rel and its descendants and reports whether rel existed.
func (d *document) remove(rel string) bool {
	if !d.exists(rel) {
		return false
	}

	if rel == "" {
		d.Nodes = make(map[string]string)

		return true
	}

	prefix := rel + "/"

	for key := range d.Nodes {
		if key == rel || strings.HasPrefix(key, prefix) {
			delete(d.Nodes, key)
		}
	}

	return true
}
