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

package mdextra

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// LinkDefinition is the data of a link reference definition,
// such as `[label]: /url "title"`.
type LinkDefinition struct {
	Destination string
	Title       string
}

// ReferenceMap is a mapping of normalized labels to link definitions.
// Use [NormalizeLabel] to compute keys.
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// NormalizeLabel case-folds a link label and collapses internal whitespace
// so that equivalent labels compare equal.
func NormalizeLabel(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

var referenceRE = regexp.MustCompile(`^\[(.+?)\]:[ \t]*<?(\S+?)>?(?:[ \t]+(?:"(.*)"|'(.*)'|\((.*)\)))?[ \t]*$`)

// reference is a hidden block holding one link reference definition.
type reference struct {
	label string
	def   LinkDefinition
}

func buildReference(ctx Context, st *State, prev Block) Block {
	if ctx.Line.Indent >= 4 {
		return nil
	}
	m := referenceRE.FindStringSubmatch(ctx.Line.Text)
	if m == nil {
		return nil
	}
	label := NormalizeLabel(m[1])
	if label == "" {
		return nil
	}
	return &reference{
		label: label,
		def: LinkDefinition{
			Destination: m[2],
			Title:       m[3] + m[4] + m[5],
		},
	}
}

// Declare adds the definition unless the label is already defined;
// the first definition of a label wins.
func (r *reference) Declare(st *State) {
	if !st.References.MatchReference(r.label) {
		st.References[r.label] = r.def
	}
}

func (r *reference) Render(st *State) *Node {
	return NewInvisible()
}
