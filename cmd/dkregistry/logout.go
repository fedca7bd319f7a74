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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/registry/remote"
)

type logoutOptions struct {
	clientOptions
	registry string
}

func logoutCmd() *cobra.Command {
	var opts logoutOptions
	cmd := &cobra.Command{
		Use:   "logout <registry>",
		Short: "Log out from a remote registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.registry = args[0]
			return runLogout(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.configs, "config", "c", nil, "auth config path")
	return cmd
}

func runLogout(ctx context.Context, opts logoutOptions) error {
	store, err := opts.credentialStore()
	if err != nil {
		return err
	}
	if err := remote.Logout(ctx, store, opts.registry); err != nil {
		return err
	}
	fmt.Printf("Removed login credentials for %s\n", opts.registry)
	return nil
}
