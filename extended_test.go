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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"zombiezen.com/go/mdextra/internal/normhtml"
)

func TestExtendedGrammar(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		variables map[string]string
		want      string
	}{
		{
			name:      "VariableFromOptions",
			input:     "Hi ${name}!",
			variables: map[string]string{"name": "Gopher"},
			want:      "<p>Hi Gopher!</p>",
		},
		{
			name:  "VariableDefinedInDocument",
			input: "${version}: 1.2\n\nVersion ${version}.",
			want:  "<p>Version 1.2.</p>",
		},
		{
			name:  "VariableDefinedAfterUse",
			input: "Version ${version}.\n\n${version}: 1.2",
			want:  "<p>Version 1.2.</p>",
		},
		{
			name:      "DocumentOverridesOptions",
			input:     "${name}: Ferris\n\n${name}",
			variables: map[string]string{"name": "Gopher"},
			want:      "<p>Ferris</p>",
		},
		{
			name:  "UndefinedVariable",
			input: "${nope}",
			want:  "<p>${nope}</p>",
		},
		{
			name:  "VariableValueIsText",
			input: "${v}: <b>\n\n${v}",
			want:  "<p>&lt;b&gt;</p>",
		},
		{
			name:  "Section",
			input: "::: warning {#w}\nCareful.\n:::",
			want:  `<div id="w" class="warning"><p>Careful.</p></div>`,
		},
		{
			name:  "NestedSections",
			input: "::: outer\n::: inner\nx\n:::\n:::\nafter",
			want:  `<div class="outer"><div class="inner"><p>x</p></div></div><p>after</p>`,
		},
		{
			name:  "UnclosedSection",
			input: "::: note\ntext",
			want:  `<div class="note"><p>text</p></div>`,
		},
		{
			name:  "SectionNeedsArgument",
			input: ":::\ntext",
			want:  "<p>:::\ntext</p>",
		},
		{
			name:  "SectionArgumentWithSpaces",
			input: "::: two words\ntext",
			want:  "<p>::: two words\ntext</p>",
		},
		{
			name:  "Figure",
			input: "!!!\n![Alt](/a.png)\n!!! A *caption*",
			want:  `<figure><p><img src="/a.png" alt="Alt" /></p><figcaption>A <em>caption</em></figcaption></figure>`,
		},
		{
			name:  "FigureAttributes",
			input: "!!! {#f .wide}\nx\n!!!",
			want:  `<figure id="f" class="wide"><p>x</p></figure>`,
		},
		{
			name:  "FigureArgumentMustBeAttributes",
			input: "!!! nope",
			want:  "<p>!!! nope</p>",
		},
		{
			name:  "DefinitionListStillWorks",
			input: "Term\n: Definition",
			want:  "<dl><dt>Term</dt><dd>Definition</dd></dl>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := New(&Options{Extended: true, Variables: test.variables})
			if err != nil {
				t.Fatal(err)
			}
			got := r.Render(test.input)
			if diff := normhtml.Diff(test.want, got); diff != "" {
				t.Errorf("Input:\n%s\nOutput (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestExtendedGrammarDisabled(t *testing.T) {
	r, err := New(&Options{Variables: map[string]string{"name": "Gopher"}})
	if err != nil {
		t.Fatal(err)
	}
	const want = "<p>${name}</p>\n<p>::: note\ntext</p>"
	if got := r.Render("${name}\n\n::: note\ntext"); got != want {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestFenceAttributes(t *testing.T) {
	tests := []struct {
		arg    string
		want   Attributes
		wantOK bool
	}{
		{arg: "note", want: Attributes{Classes: []string{"note"}}, wantOK: true},
		{arg: "note {#n .big}", want: Attributes{ID: "n", Classes: []string{"note", "big"}}, wantOK: true},
		{arg: "{.only}", want: Attributes{Classes: []string{"only"}}, wantOK: true},
		{arg: "two words", wantOK: false},
		{arg: "bad{", wantOK: false},
	}
	for _, test := range tests {
		got, ok := fenceAttributes(test.arg)
		if ok != test.wantOK {
			t.Errorf("fenceAttributes(%q) ok = %t; want %t", test.arg, ok, test.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("fenceAttributes(%q) (-want +got):\n%s", test.arg, diff)
		}
	}
}
