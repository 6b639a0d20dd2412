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

package mdextra_test

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"zombiezen.com/go/mdextra"
)

func Example() {
	fmt.Println(mdextra.Render("Hello, **World**!"))
	// Output:
	// <p>Hello, <strong>World</strong>!</p>
}

func Example_definitionList() {
	fmt.Println(mdextra.Render("Term\n: One\n: Two"))
	// Output:
	// <dl>
	// <dt>Term</dt>
	// <dd>One</dd>
	// <dd>Two</dd>
	// </dl>
}

func ExampleRenderer_WriteHTML() {
	r, err := mdextra.New(&mdextra.Options{FootnotePrefix: "post1-"})
	if err != nil {
		panic(err)
	}
	err = r.WriteHTML(os.Stdout, "Go[^go] is fun.\n\n[^go]: A programming language.\n")
	if err != nil {
		panic(err)
	}
	// Output:
	// <p>Go<sup id="post1-fnref1:go"><a class="footnote-ref" href="#post1-fn:go">1</a></sup> is fun.</p>
	// <div class="footnotes">
	// <hr />
	// <ol>
	// <li id="post1-fn:go">
	// <p>A programming language.&#160;<a class="footnote-backref" href="#post1-fnref1:go" rev="footnote">&#8617;</a></p>
	// </li>
	// </ol>
	// </div>
}

func ExampleRenderer_NewState() {
	r, err := mdextra.New(nil)
	if err != nil {
		panic(err)
	}
	st := r.NewState()
	r.RenderState("*[CSS]: Cascading Style Sheets\n\nStyle with CSS.", st)
	title, _ := st.Abbreviations.Lookup("CSS")
	fmt.Println(title)
	// Output:
	// Cascading Style Sheets
}

func ExampleParseAttributes() {
	attrs := mdextra.ParseAttributes(`#intro .lead .wide data-x="1 2"`)
	for _, a := range attrs.List() {
		fmt.Printf("%s=%q\n", a.Key, a.Value)
	}
	// Output:
	// id="intro"
	// class="lead wide"
	// data-x="1 2"
}

// mentionRE matches a @username mention.
var mentionRE = regexp.MustCompile(`^@([A-Za-z0-9_]+)`)

func ExampleExtension() {
	mentions := func(g *mdextra.Grammar) error {
		return g.AddInline('@', mdextra.Low, mdextra.InlineType{
			Name: "mention",
			Match: func(ex mdextra.Excerpt, st *mdextra.State) (int, *mdextra.Node) {
				m := mentionRE.FindStringSubmatch(ex.Text)
				if m == nil {
					return 0, nil
				}
				href := "/users/" + strings.ToLower(m[1])
				return len(m[0]), mdextra.NewElement("a",
					[]mdextra.Attribute{{Key: "href", Value: href}},
					mdextra.NewText(m[0]))
			},
		})
	}
	r, err := mdextra.New(&mdextra.Options{
		Extensions: []mdextra.Extension{mentions},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(r.Render("Thanks, @Gopher!"))
	// Output:
	// <p>Thanks, <a href="/users/gopher">@Gopher</a>!</p>
}
