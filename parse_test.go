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
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestInsecureCharacters(t *testing.T) {
	const input = "Hello,\x00World"
	const want = "<p>Hello,\ufffdWorld</p>"
	if got := Render(input); got != want {
		t.Errorf("Render(%q) = %q; want %q", input, got, want)
	}
}

func TestLineEndings(t *testing.T) {
	want := Render("Term\n: Def\n")
	for _, input := range []string{"Term\r\n: Def\r\n", "Term\r: Def\r"} {
		if got := Render(input); got != want {
			t.Errorf("Render(%q) = %q; want %q", input, got, want)
		}
	}
}

func TestRenderFreshState(t *testing.T) {
	const input = "One[^a] two[^b] one again[^a].\n\n[^a]: A\n[^b]: B\n"
	first := Render(input)
	second := Render(input)
	if first != second {
		t.Errorf("second render differs:\n%s\n---\n%s", first, second)
	}

	// Reusing a state keeps counting references.
	r, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	st := r.NewState()
	r.RenderState(input, st)
	r.RenderState(input, st)
	f, ok := st.Footnotes.Lookup("a")
	if !ok {
		t.Fatal("footnote a not declared")
	}
	if f.Number != 1 || f.Count != 4 {
		t.Errorf("footnote a = {Number: %d, Count: %d}; want {Number: 1, Count: 4}", f.Number, f.Count)
	}
}

func TestFootnoteBackReferences(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			sb := new(strings.Builder)
			sb.WriteString("First[^first].")
			for i := 0; i < n; i++ {
				sb.WriteString(" Again[^x].")
			}
			sb.WriteString("\n\n[^x]: Shared.\n[^first]: Earlier.\n")

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(sb.String())))
			if err != nil {
				t.Fatal(err)
			}
			var refs []string
			doc.Find("li[id='fn:x'] a.footnote-backref").Each(func(_ int, s *goquery.Selection) {
				refs = append(refs, s.AttrOr("href", ""))
			})
			var want []string
			for i := 1; i <= n; i++ {
				want = append(want, fmt.Sprintf("#fnref%d:x", i))
			}
			if diff := cmp.Diff(want, refs); diff != "" {
				t.Errorf("back-references (-want +got):\n%s", diff)
			}
			doc.Find("sup a.footnote-ref[href='#fn:x']").Each(func(_ int, s *goquery.Selection) {
				if got := s.Text(); got != "2" {
					t.Errorf("marker number = %q; want \"2\"", got)
				}
			})
			if got := doc.Find("div.footnotes > ol > li").Length(); got != 2 {
				t.Errorf("footnote count = %d; want 2", got)
			}
		})
	}
}

func TestFootnoteInFootnote(t *testing.T) {
	const input = "Outer[^a].\n\n[^a]: Points at[^b].\n[^b]: Inner.\n"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(input)))
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	doc.Find("div.footnotes li").Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("id", ""))
	})
	if diff := cmp.Diff([]string{"fn:a", "fn:b"}, ids); diff != "" {
		t.Errorf("footnote ids (-want +got):\n%s", diff)
	}
}

func TestFootnoteMarkerInLaterFootnote(t *testing.T) {
	const input = "x[^a] y[^b]\n\n[^a]: A\n[^b]: B see[^a]\n"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(input)))
	if err != nil {
		t.Fatal(err)
	}
	var anchors []string
	doc.Find("sup").Each(func(_ int, s *goquery.Selection) {
		anchors = append(anchors, s.AttrOr("id", ""))
	})
	if diff := cmp.Diff([]string{"fnref1:a", "fnref1:b", "fnref2:a"}, anchors); diff != "" {
		t.Errorf("marker ids (-want +got):\n%s", diff)
	}
	backlinks := make(map[string][]string)
	doc.Find("div.footnotes li").Each(func(_ int, li *goquery.Selection) {
		id := li.AttrOr("id", "")
		li.Find("a.footnote-backref").Each(func(_ int, a *goquery.Selection) {
			backlinks[id] = append(backlinks[id], a.AttrOr("href", ""))
		})
	})
	want := map[string][]string{
		"fn:a": {"#fnref1:a", "#fnref2:a"},
		"fn:b": {"#fnref1:b"},
	}
	if diff := cmp.Diff(want, backlinks); diff != "" {
		t.Errorf("back-links (-want +got):\n%s", diff)
	}
}

func TestFootnoteMarkerOutsideDocumentText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		sel     string
		attr    string
		want    string
		markers []string
		notes   []string
	}{
		{
			name:    "ImageAlt",
			input:   "![alt[^1]](i.png) then[^2]\n\n[^1]: one\n[^2]: two\n",
			sel:     "img",
			attr:    "alt",
			want:    "alt",
			markers: []string{"1"},
			notes:   []string{"fn:2"},
		},
		{
			name:    "HeaderID",
			input:   "# Foo[^1]\n\n[^1]: note\n",
			sel:     "h1",
			attr:    "id",
			want:    "foo",
			markers: []string{"1"},
			notes:   []string{"fn:1"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(Render(test.input)))
			if err != nil {
				t.Fatal(err)
			}
			if got := doc.Find(test.sel).AttrOr(test.attr, ""); got != test.want {
				t.Errorf("%s %s = %q; want %q", test.sel, test.attr, got, test.want)
			}
			var markers, notes []string
			doc.Find("sup a.footnote-ref").Each(func(_ int, s *goquery.Selection) {
				markers = append(markers, s.Text())
			})
			doc.Find("div.footnotes li").Each(func(_ int, s *goquery.Selection) {
				notes = append(notes, s.AttrOr("id", ""))
			})
			if diff := cmp.Diff(test.markers, markers); diff != "" {
				t.Errorf("marker numbers (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.notes, notes); diff != "" {
				t.Errorf("footnote ids (-want +got):\n%s", diff)
			}
			doc.Find("a.footnote-backref").Each(func(_ int, a *goquery.Selection) {
				href := a.AttrOr("href", "")
				if doc.Find("[id='"+strings.TrimPrefix(href, "#")+"']").Length() == 0 {
					t.Errorf("back-link %s has no target", href)
				}
			})
		})
	}
}

func TestMaxNesting(t *testing.T) {
	r, err := New(&Options{MaxNesting: 3})
	if err != nil {
		t.Fatal(err)
	}
	got := r.Render(strings.Repeat("> ", 10) + "deep")
	// The top-level quote plus three nested levels.
	if n := strings.Count(got, "<blockquote>"); n != 4 {
		t.Errorf("rendered %d blockquotes; want 4\n%s", n, got)
	}
	if !strings.Contains(got, "deep") {
		t.Errorf("output lost text:\n%s", got)
	}
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "LazyParagraph",
			input: "a\nb",
			want:  []string{"*mdextra.Paragraph"},
		},
		{
			name:  "BlankSeparated",
			input: "a\n\nb",
			want:  []string{"*mdextra.Paragraph", "*mdextra.Paragraph"},
		},
		{
			name:  "HeaderInterrupts",
			input: "a\n# b",
			want:  []string{"*mdextra.Paragraph", "*mdextra.Header"},
		},
		{
			name:  "SetextAcquiresParagraph",
			input: "a\n---",
			want:  []string{"*mdextra.Header"},
		},
		{
			name:  "DefinitionAcquiresParagraph",
			input: "Term\n: Def",
			want:  []string{"*mdextra.DefinitionList"},
		},
		{
			name:  "DefinitionListsMerge",
			input: "A\n: a\n\nB\n: b",
			want:  []string{"*mdextra.DefinitionList"},
		},
		{
			name:  "TableAcquiresParagraph",
			input: "a|b\n-|-\n1|2",
			want:  []string{"*mdextra.table"},
		},
		{
			name:  "HiddenDeclarations",
			input: "[^1]: note\n*[A]: b\n[r]: /url",
			want:  []string{"*mdextra.footnoteDefinition", "*mdextra.abbreviation", "*mdextra.reference"},
		},
		{
			name:  "RejectedLineStartsOver",
			input: "    code\ntext",
			want:  []string{"*mdextra.indentedCode", "*mdextra.Paragraph"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			st := defaultRenderer.NewState()
			var got []string
			for _, b := range st.parseBlocks(splitLines(test.input)) {
				got = append(got, fmt.Sprintf("%T", b))
			}
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("blocks (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeclarationsAreDocumentWide(t *testing.T) {
	const input = "[link][r] and[^n].\n\n[r]: /r\n[^n]: Note\n*[and]: conjunction\n"
	st := defaultRenderer.NewState()
	defaultRenderer.RenderState(input, st)
	if !st.References.MatchReference("r") {
		t.Error("reference r not defined")
	}
	if _, ok := st.Footnotes.Lookup("n"); !ok {
		t.Error("footnote n not declared")
	}
	if got, _ := st.Abbreviations.Lookup("and"); got != "conjunction" {
		t.Errorf("abbreviation and = %q; want \"conjunction\"", got)
	}
}
