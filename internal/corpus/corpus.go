// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package corpus provides a suite of Markdown Extra documents
// paired with the HTML they render to.
package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Example is a single document from the suite.
type Example struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Example  int    `json:"example"`
	Section  string `json:"section"`

	// Extended is set for documents that need the extended grammar.
	Extended bool `json:"extended,omitempty"`
	// FootnotePrefix is the footnote id prefix to render with.
	FootnotePrefix string `json:"footnotePrefix,omitempty"`
}

//go:embed extra.json
var extraData []byte

// Load returns the examples in the suite.
func Load() ([]Example, error) {
	var suite []Example
	if err := json.Unmarshal(extraData, &suite); err != nil {
		return nil, fmt.Errorf("load examples: %w", err)
	}
	return suite, nil
}

// Sections returns the distinct section names of examples in order of appearance.
func Sections(examples []Example) []string {
	var names []string
	seen := make(map[string]bool)
	for _, ex := range examples {
		if !seen[ex.Section] {
			seen[ex.Section] = true
			names = append(names, ex.Section)
		}
	}
	return names
}
