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
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

func TestFootnoteBook(t *testing.T) {
	b := NewFootnoteBook()
	b.Declare("a", []string{"first"})
	b.Declare("b", []string{"B"})
	b.Declare("c", []string{"C"})

	if _, _, ok := b.Reference("missing"); ok {
		t.Error("Reference(\"missing\") ok = true; want false")
	}
	type ref struct{ number, count int }
	var got []ref
	for _, label := range []string{"b", "a", "b"} {
		number, count, ok := b.Reference(label)
		if !ok {
			t.Fatalf("Reference(%q) ok = false", label)
		}
		got = append(got, ref{number, count})
	}
	want := []ref{{1, 1}, {2, 1}, {1, 2}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(ref{})); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}

	b.Declare("a", []string{"second"})
	f, ok := b.Lookup("a")
	if !ok {
		t.Fatal("Lookup(\"a\") ok = false")
	}
	wantA := &Footnote{Label: "a", Lines: []string{"second"}, Number: 2, Count: 1}
	if diff := cmp.Diff(wantA, f); diff != "" {
		t.Errorf("footnote a after redeclaring (-want +got):\n%s", diff)
	}

	var labels []string
	for _, f := range b.Numbered() {
		labels = append(labels, f.Label)
	}
	if diff := cmp.Diff([]string{"b", "a"}, labels); diff != "" {
		t.Errorf("Numbered() labels (-want +got):\n%s", diff)
	}
}

func TestFootnoteDefinitionContinuation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "SingleLine",
			input: "[^1]: Body",
			want:  []string{"Body"},
		},
		{
			name:  "Indented",
			input: "[^1]: Body\n    more\n\n    Second",
			want:  []string{"Body", "more", "", "Second"},
		},
		{
			name:  "EmptyFirstLine",
			input: "[^1]:\n    Body",
			want:  []string{"Body"},
		},
		{
			name:  "NotIndented",
			input: "[^1]: Body\nafter",
			want:  []string{"Body"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := New(nil)
			if err != nil {
				t.Fatal(err)
			}
			st := r.NewState()
			st.parseBlocks(splitLines(test.input))
			f, ok := st.Footnotes.Lookup("1")
			if !ok {
				t.Fatal("footnote not declared")
			}
			if diff := cmp.Diff(test.want, f.Lines); diff != "" {
				t.Errorf("lines (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFootnoteMarkers(t *testing.T) {
	const input = "A[^x] and B[^missing] and C[^y].\n\n[^y]: Why\n[^x]: Ex\n"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(input)))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	doc.Find("sup a.footnote-ref").Each(func(_ int, s *goquery.Selection) {
		got = append(got, s.AttrOr("href", "")+"="+s.Text())
	})
	want := []string{"#fn:x=1", "#fn:y=2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("markers (-want +got):\n%s", diff)
	}
	if p := doc.Find("body > p").First().Text(); !strings.Contains(p, "[^missing]") {
		t.Errorf("paragraph = %q; want undefined marker left as text", p)
	}
	var order []string
	doc.Find("div.footnotes > ol > li").Each(func(_ int, s *goquery.Selection) {
		order = append(order, s.AttrOr("id", ""))
	})
	if diff := cmp.Diff([]string{"fn:x", "fn:y"}, order); diff != "" {
		t.Errorf("footnote order (-want +got):\n%s", diff)
	}
}

func TestUnreferencedFootnotes(t *testing.T) {
	got := Render("Text.\n\n[^unused]: Never referenced.\n")
	if strings.Contains(got, "footnotes") {
		t.Errorf("output contains a footnote section:\n%s", got)
	}
}
