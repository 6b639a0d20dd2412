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
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewLine(t *testing.T) {
	tests := []struct {
		raw  string
		want Line
	}{
		{"x", Line{Text: "x", Indent: 0, Raw: "x"}},
		{"  x", Line{Text: "x", Indent: 2, Raw: "  x"}},
		{"\tx", Line{Text: "x", Indent: 4, Raw: "\tx"}},
		{" \tx", Line{Text: "x", Indent: 4, Raw: " \tx"}},
		{"  \t x", Line{Text: "x", Indent: 5, Raw: "  \t x"}},
		{"    ", Line{Text: "", Indent: 4, Raw: "    "}},
		{"x  y", Line{Text: "x  y", Indent: 0, Raw: "x  y"}},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, NewLine(test.raw, 0)); diff != "" {
			t.Errorf("NewLine(%q, 0) (-want +got):\n%s", test.raw, diff)
		}
	}
}

func TestTrimIndent(t *testing.T) {
	l := NewLine("      x", 0)
	tests := []struct {
		n    int
		want string
	}{
		{0, "      x"},
		{4, "  x"},
		{6, "x"},
		{8, "x"},
	}
	for _, test := range tests {
		if got := l.TrimIndent(test.n); got != test.want {
			t.Errorf("TrimIndent(%d) = %q; want %q", test.n, got, test.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"\n\n", nil},
		{"a", []string{"a"}},
		{"a\r\nb\rc\n\n", []string{"a", "b", "c"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\x00", []string{"a\ufffd"}},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, splitLines(test.text), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("splitLines(%q) (-want +got):\n%s", test.text, diff)
		}
	}
}

func TestEmptyLines(t *testing.T) {
	ctx := Context{
		Line:                    NewLine("x", 0),
		PrecedingEmptyLines:     2,
		PrecedingEmptyLinesText: "      \n",
	}
	if diff := cmp.Diff([]string{"  ", ""}, ctx.emptyLines(4)); diff != "" {
		t.Errorf("emptyLines(4) (-want +got):\n%s", diff)
	}
	if got := (Context{}).emptyLines(4); got != nil {
		t.Errorf("emptyLines with no blank lines = %q; want nil", got)
	}
}

func TestExcerpt(t *testing.T) {
	ex := Excerpt{Text: "*x", Context: "é*x", Offset: len("é")}
	if got := ex.Before(); got != "é" {
		t.Errorf("Before() = %q; want %q", got, "é")
	}
	if got := ex.PrevRune(); got != 'é' {
		t.Errorf("PrevRune() = %q; want %q", got, 'é')
	}
	start := Excerpt{Text: "x", Context: "x"}
	if got := start.PrevRune(); got != utf8.RuneError {
		t.Errorf("PrevRune() at start = %q; want %q", got, utf8.RuneError)
	}
}
