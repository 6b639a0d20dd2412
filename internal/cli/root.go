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

// Package cli provides the cobra command tree of the mdextra command.
package cli

import (
	"github.com/spf13/cobra"

	"zombiezen.com/go/mdextra/internal/logging"
)

// BuildInfo holds version information stamped in at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand returns the mdextra command with its subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	rootCmd := &cobra.Command{
		Use:   "mdextra",
		Short: "Convert Markdown Extra to HTML",
		Long: `mdextra converts Markdown Extra documents to HTML.

Besides Markdown, it understands definition lists, footnotes, abbreviations,
tables, {#id .class} attribute blocks and markdown="1" inside HTML blocks.
The --extended flag adds ${name} variables, ::: sections and !!! figures.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "path to config file (default ./.mdextra.yaml if present)")

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newVersionCommand(info))
	return rootCmd
}
