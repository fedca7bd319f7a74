/*
Copyright The dkregistry-go Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// dkregistry is a small command line client for the registry API,
// focused on authentication: logging in and out of registries and
// inspecting their contents once authenticated.
package main

import (
	"os"

	"github.com/containerd/log"
	"github.com/spf13/cobra"
)

func main() {
	var (
		logLevel  string
		logFormat string
	)
	cmd := &cobra.Command{
		Use:          "dkregistry [command]",
		Short:        "Authenticate against and inspect remote registries",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.SetFormat(log.OutputFormat(logFormat)); err != nil {
				return err
			}
			return log.SetLevel(logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	cmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		checkCmd(),
		catalogCmd(),
		tagsCmd(),
		manifestCmd(),
	)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
